package ports

import (
	"context"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
)

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	List(ctx context.Context) ([]*domain.Post, error)
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
	Delete(ctx context.Context, id int64) error
}

type CreatePostInput struct {
	Title   string
	Content string
}

type PostService interface {
	Create(ctx context.Context, input CreatePostInput) (*domain.Post, error)
	List(ctx context.Context) ([]*domain.Post, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	Delete(ctx context.Context, id int64) error
}
