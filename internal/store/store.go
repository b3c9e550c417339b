// Package store provides the repository implementations behind the
// canonical catalog: SQLite for single-node deployments, Postgres for
// shared ones, and an in-memory variant for dry runs and tests.
package store

import "github.com/Ubaidofficial/six-figure-jobs-sub002/internal/model"

// Store bundles the repository views a backend exposes.
type Store interface {
	Companies() model.CompanyRepository
	Jobs() model.JobRepository
	Ledger() model.LedgerRepository
}
