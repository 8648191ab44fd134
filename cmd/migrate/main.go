// Command folio-migrate applies the embedded schema migrations.
//
// Usage:
//
//	folio-migrate up
//	folio-migrate steps -1
//	folio-migrate version --dsn postgres://folio@localhost:5432/folio
package main

import (
	"embed"
	"errors"
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/folio/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

// CLI defines the command-line interface.
type CLI struct {
	DSN string `help:"Database connection string. Defaults to the [database] config section." env:"FOLIO_DB_DSN"`

	Up      UpCmd      `cmd:"" help:"Apply all pending migrations."`
	Down    DownCmd    `cmd:"" help:"Revert all migrations."`
	Steps   StepsCmd   `cmd:"" help:"Apply N migrations (negative reverts)."`
	Version VersionCmd `cmd:"" help:"Print the current schema version."`
	Force   ForceCmd   `cmd:"" help:"Force the schema version without running migrations."`
}

// UpCmd applies all pending migrations.
type UpCmd struct{}

func (c *UpCmd) Run(m *migrate.Migrate) error {
	if err := ignoreNoChange(m.Up()); err != nil {
		return fmt.Errorf("up: %w", err)
	}
	fmt.Println("migrations applied")
	return nil
}

// DownCmd reverts all migrations.
type DownCmd struct{}

func (c *DownCmd) Run(m *migrate.Migrate) error {
	if err := ignoreNoChange(m.Down()); err != nil {
		return fmt.Errorf("down: %w", err)
	}
	fmt.Println("migrations reverted")
	return nil
}

// StepsCmd applies a relative number of migrations.
type StepsCmd struct {
	N int `arg:"" help:"Number of steps; negative to revert."`
}

func (c *StepsCmd) Run(m *migrate.Migrate) error {
	if err := ignoreNoChange(m.Steps(c.N)); err != nil {
		return fmt.Errorf("steps %d: %w", c.N, err)
	}
	fmt.Printf("applied %d migration steps\n", c.N)
	return nil
}

// VersionCmd prints the schema version.
type VersionCmd struct{}

func (c *VersionCmd) Run(m *migrate.Migrate) error {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("version: none")
		return nil
	}
	if err != nil {
		return fmt.Errorf("version: %w", err)
	}
	fmt.Printf("version: %d, dirty: %v\n", v, dirty)
	return nil
}

// ForceCmd sets the schema version, clearing the dirty flag.
type ForceCmd struct {
	Version int `arg:"" help:"Version to record."`
}

func (c *ForceCmd) Run(m *migrate.Migrate) error {
	if err := m.Force(c.Version); err != nil {
		return fmt.Errorf("force %d: %w", c.Version, err)
	}
	fmt.Printf("forced to version %d\n", c.Version)
	return nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func resolveDSN(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	db, err := config.LoadDatabase()
	if err != nil {
		return "", err
	}
	return db.URL(), nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("folio-migrate"),
		kong.Description("Apply Folio database schema migrations."),
		kong.UsageOnError(),
	)

	dsn, err := resolveDSN(cli.DSN)
	ctx.FatalIfErrorf(err)

	source, err := iofs.New(migrations, "migrations")
	ctx.FatalIfErrorf(err)

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	ctx.FatalIfErrorf(err)
	defer m.Close()

	ctx.FatalIfErrorf(ctx.Run(m))
}
