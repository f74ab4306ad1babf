package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/lepko/lepko/internal/domain/models"
)

var ErrKeyNotFound = errors.New("access key not found")

type KeyRepository interface {
	Create(ctx context.Context, key *models.AccessKey) error
	GetByKeyString(ctx context.Context, keyString string) (*models.AccessKey, error)
	Count(ctx context.Context) (int64, error)
}

type keyRepo struct {
	db *sqlx.DB
}

func NewKeyRepo(db *sqlx.DB) KeyRepository {
	return &keyRepo{db: db}
}

func (r *keyRepo) Create(ctx context.Context, key *models.AccessKey) error {
	_, err := r.db.ExecContext(
		ctx,
		"INSERT INTO keys (id, key_string, plan_type, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)",
		key.ID,
		key.KeyString,
		key.PlanType,
		key.ExpiresAt,
		key.CreatedAt,
	)

	return err
}

func (r *keyRepo) GetByKeyString(ctx context.Context, keyString string) (*models.AccessKey, error) {
	var key models.AccessKey

	err := r.db.GetContext(ctx, &key, "SELECT * FROM keys WHERE key_string = $1", keyString)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}

	return &key, nil
}

func (r *keyRepo) Count(ctx context.Context) (int64, error) {
	var count int64

	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM keys")
	if err != nil {
		return 0, err
	}

	return count, nil
}
