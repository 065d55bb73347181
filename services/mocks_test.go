package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/upb/blog-platform/models"
	"github.com/upb/blog-platform/repositories"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) SetAdmin(ctx context.Context, id uuid.UUID, admin bool) error {
	return m.Called(ctx, id, admin).Error(0)
}

// MockPostRepository is a mock implementation of PostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, page models.PageRequest) ([]*models.Post, int, error) {
	args := m.Called(ctx, page)
	if p := args.Get(0); p != nil {
		return p.([]*models.Post), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPostRepository) GetAuthorID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*models.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID uuid.UUID, order repositories.SortOrder, page models.PageRequest) ([]*models.Comment, int, error) {
	args := m.Called(ctx, postID, order, page)
	if c := args.Get(0); c != nil {
		return c.([]*models.Comment), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockTokenRepository is a mock implementation of TokenRepository
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Create(ctx context.Context, token *models.AccessToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockTokenRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AccessToken, error) {
	args := m.Called(ctx, id)
	if t := args.Get(0); t != nil {
		return t.(*models.AccessToken), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockTokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// inlineTx runs transactional functions directly, committing by doing nothing
type inlineTx struct {
	ctx        context.Context
	committed  bool
	rolledBack bool
}

func (t *inlineTx) Commit() error            { t.committed = true; return nil }
func (t *inlineTx) Rollback() error          { t.rolledBack = true; return nil }
func (t *inlineTx) Context() context.Context { return t.ctx }

type inlineTxManager struct {
	mu  sync.Mutex
	txs []*inlineTx
}

func (m *inlineTxManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &inlineTx{ctx: ctx}
	m.txs = append(m.txs, tx)
	return tx, nil
}

func (m *inlineTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	return WithTransaction(ctx, m, fn)
}

func (m *inlineTxManager) last() *inlineTx {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.txs) == 0 {
		return nil
	}
	return m.txs[len(m.txs)-1]
}

type auditCall struct {
	Action     models.AuditAction
	ActorID    *uuid.UUID
	Resource   string
	ResourceID uuid.UUID
}

// recordingAuditor captures audit entries
type recordingAuditor struct {
	mu    sync.Mutex
	calls []auditCall
}

func (a *recordingAuditor) RecordAction(_ context.Context, action models.AuditAction, actorID *uuid.UUID, resourceType string, resourceID uuid.UUID, _ interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, auditCall{Action: action, ActorID: actorID, Resource: resourceType, ResourceID: resourceID})
}

func (a *recordingAuditor) actions() []models.AuditAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.AuditAction, 0, len(a.calls))
	for _, c := range a.calls {
		out = append(out, c.Action)
	}
	return out
}

// recordingRecorder captures decision metrics
type recordingRecorder struct {
	mu          sync.Mutex
	decisions   []string
	validations []string
}

func (r *recordingRecorder) RecordAuthorization(resource, action string, allowed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	r.decisions = append(r.decisions, resource+":"+action+":"+outcome)
}

func (r *recordingRecorder) RecordValidationFailure(ruleSet string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validations = append(r.validations, ruleSet)
}
