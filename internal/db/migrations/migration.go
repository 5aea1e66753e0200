// Package migrations holds hand-written schema migrations for the tags
// domain, each registering itself into Migrations via init().
package migrations

import (
	"context"
	"fmt"

	pgxdb "github.com/kheina-com/tagsvc/internal/db/pgx"
)

// Migration is a single forward/backward schema step.
type Migration struct {
	Name string
	Up   func() error
	Down func() error
}

// Migrations is populated by each migration file's init().
var Migrations []*Migration

// RunUp applies every registered migration in registration order, bailing
// on the first failure.
func RunUp(ctx context.Context) error {
	for _, m := range Migrations {
		if err := m.Up(); err != nil {
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
	}
	return nil
}

func exec(query string) error {
	_, err := pgxdb.GetPool().Exec(context.Background(), query)
	return err
}
