package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/blog-platform/internal/policy"
	"github.com/upb/blog-platform/internal/validation"
	"github.com/upb/blog-platform/models"
	"github.com/upb/blog-platform/repositories"
)

// PostService handles post listing and authoring
type PostService struct {
	posts  repositories.PostRepository
	txMgr  repositories.TransactionManager
	policy policy.PostAuthorization
	checks
	logger *zap.Logger
}

// NewPostService creates a PostService. auditor and recorder may be nil.
func NewPostService(
	posts repositories.PostRepository,
	txMgr repositories.TransactionManager,
	validator *validation.Validator,
	auditor Auditor,
	recorder DecisionRecorder,
	logger *zap.Logger,
) *PostService {
	return &PostService{
		posts:  posts,
		txMgr:  txMgr,
		checks: newChecks(validator, auditor, recorder),
		logger: logger,
	}
}

// List returns one page of posts, newest first, with comment counts
func (s *PostService) List(ctx context.Context, actor *policy.Actor, page int) (*models.Page[*models.Post], error) {
	if err := s.authorize(models.ResourcePost, policy.ActionList, actor, s.policy.CanList(actor), nil); err != nil {
		return nil, err
	}

	req := models.NewPageRequest(page, PostsPerPage)
	posts, total, err := s.posts.List(ctx, req)
	if err != nil {
		return nil, WrapInternal("failed to list posts", err)
	}
	return models.NewPage(posts, req, total), nil
}

// Get loads a post with its author
func (s *PostService) Get(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(models.ResourcePost, err)
	}
	if err := s.authorize(models.ResourcePost, policy.ActionView, actor, s.policy.CanView(actor, post), nil); err != nil {
		return nil, err
	}
	return post, nil
}

// Create validates payload and stores a post owned by actor
func (s *PostService) Create(ctx context.Context, actor *policy.Actor, payload validation.Payload) (*models.Post, error) {
	values, err := s.validate(ctx, validation.PostRules(), payload)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(models.ResourcePost, policy.ActionCreate, actor, s.policy.CanCreate(actor), Unauthenticated); err != nil {
		return nil, err
	}

	post := models.NewPost(actor.ID, values["title"], values["content"])
	err = WithTransaction(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) error {
		return s.posts.Create(ctx, post)
	})
	if err != nil {
		return nil, WrapInternal("failed to create post", err)
	}

	s.logger.Info("post created", zap.String("post_id", post.ID.String()), zap.String("user_id", actor.ID.String()))
	s.auditor.RecordAction(ctx, models.AuditActionPostCreated, actor.UserID(), models.ResourcePost, post.ID,
		map[string]interface{}{"title": post.Title})

	return s.reload(ctx, post), nil
}

// Update revises a post. Only its author may do so.
func (s *PostService) Update(ctx context.Context, actor *policy.Actor, id uuid.UUID, payload validation.Payload) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(models.ResourcePost, err)
	}

	values, err := s.validate(ctx, validation.PostRules(), payload)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(models.ResourcePost, policy.ActionUpdate, actor, s.policy.CanUpdate(actor, post), Unauthenticated); err != nil {
		return nil, err
	}

	post.Revise(values["title"], values["content"])
	err = WithTransaction(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) error {
		return s.posts.Update(ctx, post)
	})
	if err != nil {
		return nil, s.writeErr("update", err)
	}

	s.logger.Info("post updated", zap.String("post_id", post.ID.String()))
	s.auditor.RecordAction(ctx, models.AuditActionPostUpdated, actor.UserID(), models.ResourcePost, post.ID,
		map[string]interface{}{"title": post.Title})

	return post, nil
}

// Delete removes a post and, by cascade, its comments
func (s *PostService) Delete(ctx context.Context, actor *policy.Actor, id uuid.UUID) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return lookupErr(models.ResourcePost, err)
	}
	if err := s.authorize(models.ResourcePost, policy.ActionDelete, actor, s.policy.CanDelete(actor, post), Unauthenticated); err != nil {
		return err
	}

	err = WithTransaction(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) error {
		return s.posts.Delete(ctx, post.ID)
	})
	if err != nil {
		return s.writeErr("delete", err)
	}

	s.logger.Info("post deleted", zap.String("post_id", post.ID.String()))
	s.auditor.RecordAction(ctx, models.AuditActionPostDeleted, actor.UserID(), models.ResourcePost, post.ID,
		map[string]interface{}{"title": post.Title})
	return nil
}

func (s *PostService) reload(ctx context.Context, post *models.Post) *models.Post {
	loaded, err := s.posts.GetByID(ctx, post.ID)
	if err != nil {
		s.logger.Warn("failed to reload post", zap.Error(err), zap.String("post_id", post.ID.String()))
		return post
	}
	return loaded
}

// writeErr reports a row that vanished between load and write as not found
func (s *PostService) writeErr(op string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return NotFound(models.ResourcePost)
	}
	return WrapInternal("failed to "+op+" post", err)
}
