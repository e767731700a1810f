// Package postgres provides the PostgreSQL client for testrig.
//
// This file registers the client with the provider registry. Import
// this package with a blank identifier to make the provider available:
//
//	import _ "github.com/leapstack-labs/testrig/pkg/dbclients/postgres"
package postgres

import (
	"log/slog"

	"github.com/leapstack-labs/testrig/pkg/dbclient"
)

func init() {
	dbclient.Register("postgres", func(cfg dbclient.Config, logger *slog.Logger) dbclient.Client {
		return New(cfg, logger)
	})
}
