package principal

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shoplane/authcore/pkg/pg"
)

// PostgresStore implements Store on a pgx connection pool.
//
// Expected schema:
//
//	CREATE TABLE principals (
//	    id                       UUID PRIMARY KEY,
//	    email                    TEXT NOT NULL UNIQUE,
//	    name                     TEXT NOT NULL DEFAULT '',
//	    password_hash            BYTEA,
//	    is_verified              BOOLEAN NOT NULL DEFAULT FALSE,
//	    totp_secret_encrypted    TEXT NOT NULL DEFAULT '',
//	    totp_confirmed_at        TIMESTAMPTZ,
//	    recovery_codes_encrypted TEXT NOT NULL DEFAULT '',
//	    created_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at               TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a principal store over the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const principalColumns = `id, email, name, password_hash, is_verified,
	totp_secret_encrypted, totp_confirmed_at, recovery_codes_encrypted,
	created_at, updated_at`

func (s *PostgresStore) Find(ctx context.Context, id uuid.UUID) (*Principal, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE id = $1`, id)
	return scanPrincipal(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Principal, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE lower(email) = lower($1)`, email)
	return scanPrincipal(row)
}

func (s *PostgresStore) Create(ctx context.Context, p *Principal) error {
	if p == nil || p.ID == uuid.Nil || p.Email == "" {
		return ErrInvalidPrincipal
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO principals (
			id, email, name, password_hash, is_verified,
			totp_secret_encrypted, totp_confirmed_at, recovery_codes_encrypted
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Email, p.Name, p.PasswordHash, p.IsVerified,
		p.TotpSecretEncrypted, p.TotpConfirmedAt, p.RecoveryCodesEncrypted,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to create principal: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, p *Principal) error {
	if p == nil || p.ID == uuid.Nil || p.Email == "" {
		return ErrInvalidPrincipal
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE principals SET
			email = $2,
			name = $3,
			password_hash = $4,
			is_verified = $5,
			totp_secret_encrypted = $6,
			totp_confirmed_at = $7,
			recovery_codes_encrypted = $8,
			updated_at = now()
		WHERE id = $1`,
		p.ID, p.Email, p.Name, p.PasswordHash, p.IsVerified,
		p.TotpSecretEncrypted, p.TotpConfirmedAt, p.RecoveryCodesEncrypted,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to save principal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPrincipal(row pgx.Row) (*Principal, error) {
	var p Principal
	err := row.Scan(
		&p.ID, &p.Email, &p.Name, &p.PasswordHash, &p.IsVerified,
		&p.TotpSecretEncrypted, &p.TotpConfirmedAt, &p.RecoveryCodesEncrypted,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan principal: %w", err)
	}
	return &p, nil
}
