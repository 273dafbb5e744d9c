// Package modkit provides module wiring and core deps
package modkit

import (
	"sleuth/internal/modkit/repokit"
	"sleuth/internal/platform/config"
	"sleuth/internal/platform/logger"
)

// Deps holds core dependencies passed to modules.
// This is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
}

// ZeroOK returns true when deps are safe to use with zero values in tests.
// Consumers should still nil check optional stores
func (d Deps) ZeroOK() bool { return true }
