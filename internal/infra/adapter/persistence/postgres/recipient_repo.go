package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/repository"
)

// RecipientRepo persists recipient membership in Postgres. Uniqueness
// is enforced by the primary key on email, and INSERT ... ON CONFLICT /
// DELETE make concurrent subscribe/unsubscribe linearizable at the
// database rather than with client-side read-modify-write.
type RecipientRepo struct{ db *sql.DB }

func NewRecipientRepo(db *sql.DB) repository.RecipientRepository {
	return &RecipientRepo{db: db}
}

func (repo *RecipientRepo) List(ctx context.Context) ([]string, error) {
	const query = `
SELECT email
FROM recipients
ORDER BY subscribed_at ASC, email ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	emails := make([]string, 0, 50)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

func (repo *RecipientRepo) Add(ctx context.Context, email string) (bool, error) {
	email = entity.NormalizeEmail(email)
	rec := entity.Recipient{Email: email}
	if err := rec.Validate(); err != nil {
		return false, fmt.Errorf("Add: %w", err)
	}

	const query = `
INSERT INTO recipients (email, subscribed_at)
VALUES ($1, NOW())
ON CONFLICT (email) DO NOTHING`
	res, err := repo.db.ExecContext(ctx, query, email)
	if err != nil {
		return false, fmt.Errorf("Add: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Add: %w", err)
	}
	return affected > 0, nil
}

func (repo *RecipientRepo) Remove(ctx context.Context, email string) (bool, error) {
	email = entity.NormalizeEmail(email)

	const query = `
DELETE FROM recipients
WHERE email = $1`
	res, err := repo.db.ExecContext(ctx, query, email)
	if err != nil {
		return false, fmt.Errorf("Remove: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("Remove: %w", err)
	}
	return affected > 0, nil
}
