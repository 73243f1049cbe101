package store

import (
	"context"

	"github.com/ykvlv/etymology-bot/internal/domain"
)

// Repo defines storage operations for subscriber profiles.
type Repo interface {
	// GetUser returns domain.ErrNotFound when the chat has no profile.
	GetUser(ctx context.Context, chatID int64) (*domain.Profile, error)
	// Merge creates the profile or merges the non-nil patch fields into it,
	// always refreshing updated_at. LastSentAt is never moved backwards.
	Merge(ctx context.Context, chatID int64, patch domain.Patch) error
	// ListEligible returns every profile with language, interests and interval set.
	ListEligible(ctx context.Context) ([]domain.Profile, error)
	Close() error
}
