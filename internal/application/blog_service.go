package application

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rylenlobo/blog-app-client/internal/adapters/blogapi"
	"github.com/rylenlobo/blog-app-client/internal/domain"
)

// BlogService wraps the post operations of the blog API. Drafts are
// validated before any network call; the editor document passes through
// untouched.
type BlogService struct {
	client *blogapi.Client
}

func NewBlogService(client *blogapi.Client) *BlogService {
	return &BlogService{client: client}
}

func (s *BlogService) ListPosts(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	if err := s.client.DoJSON(ctx, http.MethodGet, "/blog/posts", nil, &posts); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *BlogService) GetPost(ctx context.Context, id domain.PostID) (domain.Post, error) {
	var post domain.Post
	if err := s.client.DoJSON(ctx, http.MethodGet, "/blog/posts/"+url.PathEscape(string(id)), nil, &post); err != nil {
		return domain.Post{}, fmt.Errorf("get post %s: %w", id, err)
	}
	return post, nil
}

func (s *BlogService) MyPosts(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	if err := s.client.DoJSON(ctx, http.MethodGet, "/blog/myposts", nil, &posts); err != nil {
		return nil, fmt.Errorf("list my posts: %w", err)
	}
	return posts, nil
}

func (s *BlogService) CreatePost(ctx context.Context, draft domain.PostDraft) (domain.Post, error) {
	if err := draft.Validate(); err != nil {
		return domain.Post{}, err
	}

	var post domain.Post
	if err := s.client.DoJSON(ctx, http.MethodPost, "/blog/posts", draft, &post); err != nil {
		return domain.Post{}, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

func (s *BlogService) UpdatePost(ctx context.Context, id domain.PostID, draft domain.PostDraft) (domain.Post, error) {
	if err := draft.Validate(); err != nil {
		return domain.Post{}, err
	}

	var post domain.Post
	if err := s.client.DoJSON(ctx, http.MethodPut, "/blog/edit-post/"+url.PathEscape(string(id)), draft, &post); err != nil {
		return domain.Post{}, fmt.Errorf("update post %s: %w", id, err)
	}
	return post, nil
}

func (s *BlogService) DeletePost(ctx context.Context, id domain.PostID) error {
	if _, err := s.client.Do(ctx, http.MethodDelete, "/blog/posts/"+url.PathEscape(string(id)), nil); err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	return nil
}
