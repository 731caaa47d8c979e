package postgres

import (
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// connRows returns its connection to the pool once the rows are closed,
// either explicitly or by reading past the last row.
type connRows struct {
	pgx.Rows
	conn    *pgxpool.Conn
	release sync.Once
}

func (r *connRows) Close() {
	r.Rows.Close()
	r.release.Do(r.conn.Release)
}

func (r *connRows) Next() bool {
	if r.Rows.Next() {
		return true
	}
	r.Close()
	return false
}

func (r *connRows) Scan(dest ...any) error {
	err := r.Rows.Scan(dest...)
	if err != nil {
		r.Close()
	}
	return err
}

// connRow is the single-row form of connRows. A failed acquisition is
// reported by Scan.
type connRow struct {
	rows pgx.Rows
	err  error
}

func (r *connRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	rows := r.rows
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return pgx.ErrNoRows
	}
	if err := rows.Scan(dest...); err != nil {
		return err
	}
	rows.Close()
	return rows.Err()
}
