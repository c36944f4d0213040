package sarybala

import "embed"

// MigrationsFS holds the embedded SQL migrations for both supported backends.
//
//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var MigrationsFS embed.FS
