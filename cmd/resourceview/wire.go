//go:build wireinject
// +build wireinject

// Package main is the host bootstrap (SPEC_FULL.md §2's "(NEW) host
// bootstrap"). This file documents the intended wire.Build graph; the
// real constructor chain is hand-composed in wire_gen.go, matching the
// teacher's own checked-in internal/cli/wire_gen.go.
package main

import (
	"context"

	"github.com/google/wire"

	"github.com/devdash/resourceview/internal/service"
)

func initializeService(ctx context.Context, cfg Config) (*service.Service, error) {
	wire.Build(
		provideSources,
		provideProcessRunner,
		provideAppModel,
		provideProtocolPredicate,
		provideDependencies,
		service.New,
	)
	return nil, nil
}

type buildResult struct {
	Service *service.Service
}
