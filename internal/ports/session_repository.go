package ports

import (
	"context"

	"github.com/rylenlobo/blog-app-client/internal/domain"
)

type SessionRepository interface {
	// Get returns the persisted session, or domain.ErrSessionNotFound.
	Get(ctx context.Context) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Clear(ctx context.Context) error
}
