package citizens

import (
	"context"
	"errors"

	"dga_gateway/internal/config/connections/postgres"
	"dga_gateway/internal/failure"
	"dga_gateway/internal/models"

	"github.com/jackc/pgx/v5"
)

type PostgresStore struct {
	pg    *postgres.Postgres
	table string
}

func NewPostgresStore(pg *postgres.Postgres) *PostgresStore {
	return &PostgresStore{pg: pg, table: "citizens"}
}

func (s *PostgresStore) GetTableName() string {
	return s.table
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if s.pg == nil || s.pg.Pool == nil {
		return errors.New("postgres not initialized")
	}
	_, err := s.pg.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+s.table+` (
			citizen_id VARCHAR(13)  PRIMARY KEY,
			user_id    VARCHAR(50)  NOT NULL,
			firstname  VARCHAR(100) NOT NULL,
			lastname   VARCHAR(100) NOT NULL,
			mobile     VARCHAR(10)  NOT NULL DEFAULT '',
			email      VARCHAR(100) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`)
	return err
}

func (s *PostgresStore) Upsert(ctx context.Context, rec models.CitizenRecord) (models.CitizenRecord, error) {
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		return models.CitizenRecord{}, failure.Wrap(failure.KindStore, "invalid citizen record", err)
	}
	if s.pg == nil || s.pg.Pool == nil {
		return models.CitizenRecord{}, failure.Wrap(failure.KindStore, "postgres not available", errors.New("postgres not initialized"))
	}

	query := `
		INSERT INTO ` + s.table + ` (
			citizen_id, user_id, firstname, lastname, mobile, email, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		)
		ON CONFLICT (citizen_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			firstname = EXCLUDED.firstname,
			lastname = EXCLUDED.lastname,
			mobile = EXCLUDED.mobile,
			email = EXCLUDED.email,
			updated_at = NOW()
		RETURNING
			citizen_id, user_id, firstname, lastname, mobile, email, created_at, updated_at
	`

	row := s.pg.Pool.QueryRow(ctx, query,
		rec.CitizenID, rec.UserID, rec.Firstname, rec.Lastname, rec.Mobile, rec.Email,
	)
	out, err := scanCitizen(row)
	if err != nil {
		return models.CitizenRecord{}, failure.Wrap(failure.KindStore, "upsert citizen", err)
	}
	return out, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int64) ([]models.CitizenRecord, error) {
	if s.pg == nil || s.pg.Pool == nil {
		return nil, errors.New("postgres not initialized")
	}
	query := `
		SELECT citizen_id, user_id, firstname, lastname, mobile, email, created_at, updated_at
		FROM ` + s.table + `
		ORDER BY updated_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pg.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := make([]models.CitizenRecord, 0)
	for rows.Next() {
		r, err := scanCitizen(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if s.pg == nil || s.pg.Pool == nil {
		return errors.New("postgres not initialized")
	}
	return s.pg.Pool.Ping(ctx)
}

func scanCitizen(row pgx.Row) (models.CitizenRecord, error) {
	var r models.CitizenRecord
	err := row.Scan(
		&r.CitizenID, &r.UserID, &r.Firstname, &r.Lastname, &r.Mobile, &r.Email,
		&r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}
