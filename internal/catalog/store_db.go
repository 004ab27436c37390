package catalog

import (
	"context"
	"database/sql"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the prices table if it does not exist yet.
// There is no unique index on name: the one-record-per-name policy lives
// in the ingest path, and the create API is allowed to duplicate.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS prices (
				id   BIGSERIAL PRIMARY KEY,
				name TEXT      NOT NULL,
				cost BIGINT    NOT NULL
			)
		`)
		return err
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) FindByName(ctx context.Context, name string) (Record, bool, error) {
	var rec Record

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT id, name, cost
			FROM prices
			WHERE name = $1
			ORDER BY id ASC
			LIMIT 1
		`, name).Scan(&rec.ID, &rec.Name, &rec.Cost)
	})

	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

func (s *PostgresStore) Insert(ctx context.Context, name string, cost int64) (Record, error) {
	rec := Record{Name: name, Cost: cost}

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			INSERT INTO prices (name, cost)
			VALUES ($1, $2)
			RETURNING id
		`, name, cost).Scan(&rec.ID)
	})

	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context, offset, limit int) ([]Record, error) {
	var out []Record

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, name, cost
			FROM prices
			ORDER BY id ASC
			OFFSET $1 LIMIT $2
		`, offset, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Record, 0, 16)
		for rows.Next() {
			var rec Record
			if err := rows.Scan(&rec.ID, &rec.Name, &rec.Cost); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (Record, bool, error) {
	var rec Record

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT id, name, cost
			FROM prices
			WHERE id = $1
		`, id).Scan(&rec.ID, &rec.Name, &rec.Cost)
	})

	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

func (s *PostgresStore) Update(ctx context.Context, id int64, p Patch) (Record, error) {
	var rec Record

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			UPDATE prices
			SET name = COALESCE($2::text, name),
			    cost = COALESCE($3::bigint, cost)
			WHERE id = $1
			RETURNING id, name, cost
		`, id, p.Name, p.Cost).Scan(&rec.ID, &rec.Name, &rec.Cost)
	})

	if err == sql.ErrNoRows {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `
			DELETE FROM prices
			WHERE id = $1
		`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
