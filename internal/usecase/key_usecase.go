package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lepko/lepko/internal/application/metric"
	"github.com/lepko/lepko/internal/domain/models"
	"github.com/lepko/lepko/internal/infra/adapters/postgres/repository"
)

var (
	ErrUnknownPlan = errors.New("unknown plan type")
	ErrKeyNotFound = repository.ErrKeyNotFound
)

// KeyStatus is what GET /keys/check reports for a key.
type KeyStatus string

const (
	KeyActive   KeyStatus = "active"
	KeyExpired  KeyStatus = "expired"
	KeyNotFound KeyStatus = "not_found"
)

type KeyUsecase interface {
	// Generate issues a fresh key for the plan.
	Generate(ctx context.Context, plan models.Plan) (*models.AccessKey, error)

	// Check reports the key's status; the plan is only set when active.
	Check(ctx context.Context, keyString string) (KeyStatus, models.Plan, error)

	Count(ctx context.Context) (int64, error)
}

type keyUsecase struct {
	keyRepo repository.KeyRepository
}

func NewKeyUsecase(keyRepo repository.KeyRepository) KeyUsecase {
	return &keyUsecase{keyRepo: keyRepo}
}

func (u *keyUsecase) Generate(ctx context.Context, plan models.Plan) (*models.AccessKey, error) {
	lifetime, ok := plan.Duration()
	if !ok {
		return nil, ErrUnknownPlan
	}

	now := time.Now()

	key := &models.AccessKey{
		ID:        uuid.New(),
		KeyString: newKeyString(),
		PlanType:  plan,
		ExpiresAt: now.Add(lifetime),
		CreatedAt: now,
	}

	if err := u.keyRepo.Create(ctx, key); err != nil {
		return nil, fmt.Errorf("store access key: %w", err)
	}

	metric.RecordKeyGenerated(string(plan))

	return key, nil
}

func (u *keyUsecase) Check(ctx context.Context, keyString string) (KeyStatus, models.Plan, error) {
	key, err := u.keyRepo.GetByKeyString(ctx, keyString)
	if errors.Is(err, repository.ErrKeyNotFound) {
		return KeyNotFound, "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("look up access key: %w", err)
	}

	if key.Expired(time.Now()) {
		return KeyExpired, "", nil
	}

	return KeyActive, key.PlanType, nil
}

func (u *keyUsecase) Count(ctx context.Context) (int64, error) {
	return u.keyRepo.Count(ctx)
}

// newKeyString builds the opaque key handed to the user. UUID-derived so it
// carries no information about plan or issue time.
func newKeyString() string {
	return "LEPKO-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
}
