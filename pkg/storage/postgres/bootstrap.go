package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rhuss/castservice/pkg/schema"
)

// bootstrap creates the given tables if they do not exist yet. Existing
// tables are left untouched; changing their shape is out of scope here.
func (p *Pool) bootstrap(ctx context.Context, tables []schema.Table) error {
	for _, t := range tables {
		slog.Info("ensuring table", "table", t.Name())

		if _, err := p.Exec(ctx, t.CreateSQL()); err != nil {
			return fmt.Errorf("creating table %s: %w", t.Name(), err)
		}
	}
	return nil
}
