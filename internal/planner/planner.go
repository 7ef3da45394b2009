// Package planner produces the migration plan from the classified graph:
// mappings from legacy constructs onto the target stack, and an ordered
// strategy that migrates dependencies before their dependents.
package planner

import (
	"go.uber.org/zap"

	"codeport/internal/graphstore"
	"codeport/internal/resolver"
	"codeport/internal/retry"
)

type Planner struct {
	store    *graphstore.Store
	resolver *resolver.Resolver
	retryCfg *retry.Config
	logger   *zap.Logger
}

func New(store *graphstore.Store, res *resolver.Resolver, retryCfg *retry.Config, logger *zap.Logger) *Planner {
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{store: store, resolver: res, retryCfg: retryCfg, logger: logger}
}
