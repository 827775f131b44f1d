package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vitibrasil/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS harvested_rows (
	id           uuid PRIMARY KEY,
	run_id       uuid NOT NULL,
	domain       text NOT NULL,
	category     text NOT NULL DEFAULT '',
	year         integer NOT NULL,
	position     integer NOT NULL,
	name         text NOT NULL,
	amount       text NOT NULL,
	value        text NOT NULL DEFAULT '',
	harvested_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS harvested_rows_key_idx
	ON harvested_rows (domain, category, year, position);
`

var columns = []string{"id", "run_id", "domain", "category", "year", "position", "name", "amount", "value", "harvested_at"}

type HarvestRepository struct {
	DB *pgxpool.Pool
}

func (r *HarvestRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.Exec(ctx, schema); err != nil {
		return fmt.Errorf("repository: create schema: %w", err)
	}
	return nil
}

// ReplaceYear substitui as linhas de (domain, category, year) pelas novas,
// numa única transação.
func (r *HarvestRepository) ReplaceYear(ctx context.Context, domain, category string, year int, rows []model.HarvestedRow) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM harvested_rows
		WHERE domain = $1 AND category = $2 AND year = $3
	`, domain, category, year)
	if err != nil {
		return fmt.Errorf("repository: delete %s/%s/%d: %w", domain, category, year, err)
	}

	src := pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		h := rows[i]
		return []any{h.ID, h.RunID, h.Domain, h.Category, h.Year, h.Position, h.Name, h.Amount, h.Value, h.HarvestedAt}, nil
	})
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"harvested_rows"}, columns, src); err != nil {
		return fmt.Errorf("repository: copy %s/%s/%d: %w", domain, category, year, err)
	}

	return tx.Commit(ctx)
}

// List returns the stored rows of one key in page order.
func (r *HarvestRepository) List(ctx context.Context, domain, category string, year int) ([]model.HarvestedRow, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, run_id, domain, category, year, position, name, amount, value, harvested_at
		FROM harvested_rows
		WHERE domain = $1 AND category = $2 AND year = $3
		ORDER BY position
	`, domain, category, year)
	if err != nil {
		return nil, fmt.Errorf("repository: list: %w", err)
	}
	defer rows.Close()

	var list []model.HarvestedRow
	for rows.Next() {
		var h model.HarvestedRow
		if err := rows.Scan(&h.ID, &h.RunID, &h.Domain, &h.Category, &h.Year, &h.Position, &h.Name, &h.Amount, &h.Value, &h.HarvestedAt); err != nil {
			return nil, fmt.Errorf("repository: scan: %w", err)
		}
		list = append(list, h)
	}
	return list, rows.Err()
}

// Rows converts stored rows back into scraper rows.
func Rows(list []model.HarvestedRow) []model.Row {
	out := make([]model.Row, len(list))
	for i, h := range list {
		out[i] = model.Row{Name: h.Name, Year: h.Year, Amount: h.Amount, Value: h.Value}
	}
	return out
}
