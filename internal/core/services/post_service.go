package services

import (
	"context"
	"strings"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
	"github.com/vncsmyrnk/opinionpoll/internal/core/ports"
)

type postService struct {
	repo ports.PostRepository
}

func NewPostService(repo ports.PostRepository) ports.PostService {
	return &postService{repo: repo}
}

func (s *postService) Create(ctx context.Context, input ports.CreatePostInput) (*domain.Post, error) {
	post := &domain.Post{
		Title:   strings.TrimSpace(input.Title),
		Content: strings.TrimSpace(input.Content),
	}
	if post.Title == "" || post.Content == "" {
		return nil, domain.NewValidationError("", "title and content are required")
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) List(ctx context.Context) ([]*domain.Post, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*domain.Post{}
	}
	return posts, nil
}

func (s *postService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidPostID
	}
	return s.repo.GetByID(ctx, id)
}

func (s *postService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidPostID
	}
	return s.repo.Delete(ctx, id)
}
