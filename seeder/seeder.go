package seeder

import (
	"context"
	"fmt"

	"github.com/tunaaoguzhann/dataforge/database"
)

// Seeder populates one or more tables.
type Seeder interface {
	Run(ctx context.Context) error
}

// Base carries what most seeders need. Embed it in a seeder struct.
type Base struct {
	Conn    *database.Connection
	Factory *Factory
}

func NewBase(conn *database.Connection) Base {
	return Base{Conn: conn, Factory: NewFactory(conn, nil)}
}

// Run executes seeders in order and stops at the first error.
func Run(ctx context.Context, seeders ...Seeder) error {
	for _, s := range seeders {
		if err := s.Run(ctx); err != nil {
			return fmt.Errorf("running %T: %w", s, err)
		}
	}
	return nil
}
