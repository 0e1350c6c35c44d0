package database

import "embed"

// Migrations holds the versioned SQL files applied by RunMigrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS
