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

// Channel identifies the surface a comment arrives through. The JSON API and
// the HTML form enforce different minimum lengths on new comments.
type Channel int

const (
	ChannelAPI Channel = iota
	ChannelWeb
)

// createRules picks the rule set for new comments
func (c Channel) createRules() validation.RuleSet {
	if c == ChannelWeb {
		return validation.CommentFormRules()
	}
	return validation.CommentAPIRules()
}

// CommentService handles comments on posts, including guest comments
type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	txMgr    repositories.TransactionManager
	policy   policy.CommentAuthorization
	checks
	logger *zap.Logger
}

// NewCommentService creates a CommentService. auditor and recorder may be nil.
func NewCommentService(
	comments repositories.CommentRepository,
	posts repositories.PostRepository,
	txMgr repositories.TransactionManager,
	validator *validation.Validator,
	auditor Auditor,
	recorder DecisionRecorder,
	logger *zap.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		txMgr:    txMgr,
		checks:   newChecks(validator, auditor, recorder),
		logger:   logger,
	}
}

// ListForPost returns one page of a post's comments, newest first
func (s *CommentService) ListForPost(ctx context.Context, actor *policy.Actor, postID uuid.UUID, page int) (*models.Page[*models.Comment], error) {
	if err := s.authorize(models.ResourceComment, policy.ActionList, actor, s.policy.CanList(actor), nil); err != nil {
		return nil, err
	}
	if _, err := s.posts.GetAuthorID(ctx, postID); err != nil {
		return nil, lookupErr(models.ResourcePost, err)
	}

	req := models.NewPageRequest(page, CommentsPerPage)
	comments, total, err := s.comments.ListByPost(ctx, postID, repositories.NewestFirst, req)
	if err != nil {
		return nil, WrapInternal("failed to list comments", err)
	}
	return models.NewPage(comments, req, total), nil
}

// Thread returns every comment of a post, oldest first
func (s *CommentService) Thread(ctx context.Context, actor *policy.Actor, postID uuid.UUID) ([]*models.Comment, error) {
	if err := s.authorize(models.ResourceComment, policy.ActionList, actor, s.policy.CanList(actor), nil); err != nil {
		return nil, err
	}
	comments, _, err := s.comments.ListByPost(ctx, postID, repositories.OldestFirst, models.PageRequest{})
	if err != nil {
		return nil, WrapInternal("failed to list comments", err)
	}
	return comments, nil
}

// Get loads a single comment
func (s *CommentService) Get(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(models.ResourceComment, err)
	}
	if err := s.authorize(models.ResourceComment, policy.ActionView, actor, s.policy.CanView(actor, comment), nil); err != nil {
		return nil, err
	}
	return comment, nil
}

// Create adds a comment to a post. A nil actor posts as a guest.
func (s *CommentService) Create(ctx context.Context, actor *policy.Actor, postID uuid.UUID, payload validation.Payload, channel Channel) (*models.Comment, error) {
	if _, err := s.posts.GetAuthorID(ctx, postID); err != nil {
		return nil, lookupErr(models.ResourcePost, err)
	}

	values, err := s.validate(ctx, channel.createRules(), payload)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(models.ResourceComment, policy.ActionCreate, actor, s.policy.CanCreate(actor), nil); err != nil {
		return nil, err
	}

	comment := models.NewComment(postID, actor.UserID(), values["comment"])
	err = WithTransaction(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) error {
		return s.comments.Create(ctx, comment)
	})
	if err != nil {
		return nil, WrapInternal("failed to create comment", err)
	}

	s.logger.Info("comment created",
		zap.String("comment_id", comment.ID.String()),
		zap.String("post_id", postID.String()),
		zap.Bool("guest", comment.IsGuest()))
	s.auditor.RecordAction(ctx, models.AuditActionCommentCreated, actor.UserID(), models.ResourceComment, comment.ID,
		map[string]interface{}{"post_id": postID})

	return s.reload(ctx, comment), nil
}

// Update revises a comment body. Admins and the comment's author may edit it.
func (s *CommentService) Update(ctx context.Context, actor *policy.Actor, id uuid.UUID, payload validation.Payload) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(models.ResourceComment, err)
	}

	values, err := s.validate(ctx, validation.CommentFormRules(), payload)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(models.ResourceComment, policy.ActionUpdate, actor, s.policy.CanUpdate(actor, comment), nil); err != nil {
		return nil, err
	}

	comment.Revise(values["comment"])
	err = WithTransaction(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) error {
		return s.comments.Update(ctx, comment)
	})
	if err != nil {
		return nil, s.writeErr("update", err)
	}

	s.logger.Info("comment updated", zap.String("comment_id", comment.ID.String()))
	s.auditor.RecordAction(ctx, models.AuditActionCommentUpdated, actor.UserID(), models.ResourceComment, comment.ID,
		map[string]interface{}{"post_id": comment.PostID})

	return comment, nil
}

// Delete removes a comment. Admins, its author and the owner of the post it
// belongs to may delete it. The deleted comment is returned so callers can
// navigate back to its post.
func (s *CommentService) Delete(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(models.ResourceComment, err)
	}
	postOwnerID, err := s.posts.GetAuthorID(ctx, comment.PostID)
	if err != nil {
		return nil, lookupErr(models.ResourcePost, err)
	}

	allowed := s.policy.CanDelete(actor, comment, postOwnerID)
	if err := s.authorize(models.ResourceComment, policy.ActionDelete, actor, allowed, nil); err != nil {
		return nil, err
	}

	err = WithTransaction(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) error {
		return s.comments.Delete(ctx, comment.ID)
	})
	if err != nil {
		return nil, s.writeErr("delete", err)
	}

	s.logger.Info("comment deleted", zap.String("comment_id", comment.ID.String()))
	s.auditor.RecordAction(ctx, models.AuditActionCommentDeleted, actor.UserID(), models.ResourceComment, comment.ID,
		map[string]interface{}{"post_id": comment.PostID, "guest": comment.IsGuest()})

	return comment, nil
}

func (s *CommentService) reload(ctx context.Context, comment *models.Comment) *models.Comment {
	loaded, err := s.comments.GetByID(ctx, comment.ID)
	if err != nil {
		s.logger.Warn("failed to reload comment", zap.Error(err), zap.String("comment_id", comment.ID.String()))
		return comment
	}
	return loaded
}

func (s *CommentService) writeErr(op string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return NotFound(models.ResourceComment)
	}
	return WrapInternal("failed to "+op+" comment", err)
}
