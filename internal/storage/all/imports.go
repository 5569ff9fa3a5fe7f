// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register their factories with the storage package.
//
// In other words, importing this package makes the following DSN schemes
// available at runtime:
//
//   - "mssql", "sqlserver"    (wordfreq/internal/storage/mssql)
//   - "mysql"                 (wordfreq/internal/storage/mysql)
//   - "postgres", "postgresql" (wordfreq/internal/storage/postgres)
//   - "sqlite"                 (wordfreq/internal/storage/sqlite)
//
// Typical usage (in cmd/wordfreq/main.go or a similar wiring layer):
//
//	import (
//	    _ "wordfreq/internal/storage/all" // enable all built-in backends
//
//	    "wordfreq/internal/storage"
//	)
//
//	st, err := storage.Open(ctx, cfg.StoreDSN)
//	if err != nil {
//	    // handle error
//	}
//	defer st.Close()
//
// This pattern keeps backend-specific wiring in a single, small package and
// allows the rest of the application to depend only on the storage
// abstraction rather than individual backends.
//
// Note: if you want a binary that supports only a subset of backends, you can
// define an alternative wiring package that imports only the required ones
// instead of this package.
package all

import (
	_ "wordfreq/internal/storage/mssql"
	_ "wordfreq/internal/storage/mysql"
	_ "wordfreq/internal/storage/postgres"
	_ "wordfreq/internal/storage/sqlite"
)
