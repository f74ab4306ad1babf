package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/lepko/lepko/internal/application/metric"
	"github.com/lepko/lepko/internal/infra/adapters/memory"
)

// ErrDropNotFound also covers expired and already-claimed drops; the three
// cases are indistinguishable to the caller on purpose.
var ErrDropNotFound = errors.New("file not found or expired")

type DropUsecase interface {
	// Store saves the uploaded content and returns the one-shot file id.
	Store(ctx context.Context, src io.Reader, filename string) (uuid.UUID, error)

	// Claim consumes the drop: the returned path is handed to the caller,
	// who removes the file after streaming it.
	Claim(ctx context.Context, id uuid.UUID) (memory.Drop, error)

	Transferred() int64
}

type dropUsecase struct {
	dropRepo  memory.DropRepository
	uploadDir string
	ttl       time.Duration
}

func NewDropUsecase(dropRepo memory.DropRepository, uploadDir string, ttl time.Duration) (DropUsecase, error) {
	if err := os.MkdirAll(uploadDir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &dropUsecase{
		dropRepo:  dropRepo,
		uploadDir: uploadDir,
		ttl:       ttl,
	}, nil
}

func (u *dropUsecase) Store(ctx context.Context, src io.Reader, filename string) (uuid.UUID, error) {
	id := uuid.New()

	// The original name only survives in metadata; on disk the id prefix
	// keeps uploads from colliding.
	path := filepath.Join(u.uploadDir, id.String()+"_"+filepath.Base(filename))

	dst, err := os.Create(path)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create drop file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return uuid.Nil, fmt.Errorf("write drop file: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(path)
		return uuid.Nil, fmt.Errorf("close drop file: %w", err)
	}

	u.dropRepo.Put(id, memory.Drop{
		Path:      path,
		Filename:  filename,
		ExpiresAt: time.Now().Add(u.ttl),
	})

	metric.RecordDropUploaded()

	return id, nil
}

func (u *dropUsecase) Claim(ctx context.Context, id uuid.UUID) (memory.Drop, error) {
	drop, ok := u.dropRepo.Claim(id)
	if !ok {
		return memory.Drop{}, ErrDropNotFound
	}

	if _, err := os.Stat(drop.Path); err != nil {
		return memory.Drop{}, ErrDropNotFound
	}

	metric.RecordDropClaimed()

	return drop, nil
}

func (u *dropUsecase) Transferred() int64 {
	return u.dropRepo.Transferred()
}
