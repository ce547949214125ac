package postgres

import "embed"

// Migrations holds the schema migrations applied by `financed migrate` and at
// start-up.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that holds the files.
const MigrationsDir = "migrations"
