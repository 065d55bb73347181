package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/blog-platform/internal/policy"
	"github.com/upb/blog-platform/internal/validation"
	"github.com/upb/blog-platform/models"
	"github.com/upb/blog-platform/repositories"
)

type txMarker struct{}

// scriptedTx is a transaction whose Commit and Rollback results are preset
type scriptedTx struct {
	ctx         context.Context
	commitErr   error
	rollbackErr error
	commits     int
	rollbacks   int
}

func (t *scriptedTx) Commit() error            { t.commits++; return t.commitErr }
func (t *scriptedTx) Rollback() error          { t.rollbacks++; return t.rollbackErr }
func (t *scriptedTx) Context() context.Context { return t.ctx }

// scriptedTxManager hands out one scriptedTx or fails to begin
type scriptedTxManager struct {
	tx       *scriptedTx
	beginErr error
}

func (m *scriptedTxManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	if m.tx.ctx == nil {
		m.tx.ctx = context.WithValue(ctx, txMarker{}, m.tx)
	}
	return m.tx, nil
}

func (m *scriptedTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	return WithTransaction(ctx, m, fn)
}

func TestWithTransactionResult_Outcomes(t *testing.T) {
	workErr := errors.New("insert failed")

	tests := []struct {
		name          string
		manager       *scriptedTxManager
		workErr       error
		wantResult    int
		wantErrIs     error
		wantErrText   []string
		wantCommits   int
		wantRollbacks int
	}{
		{
			name:        "commits on success",
			manager:     &scriptedTxManager{tx: &scriptedTx{}},
			wantResult:  7,
			wantCommits: 1,
		},
		{
			name:          "rolls back and returns the work error unchanged",
			manager:       &scriptedTxManager{tx: &scriptedTx{}},
			workErr:       workErr,
			wantErrIs:     workErr,
			wantRollbacks: 1,
		},
		{
			name:          "reports both errors when rollback fails",
			manager:       &scriptedTxManager{tx: &scriptedTx{rollbackErr: errors.New("conn reset")}},
			workErr:       workErr,
			wantErrText:   []string{"insert failed", "conn reset"},
			wantRollbacks: 1,
		},
		{
			name:        "commit failure keeps the computed value",
			manager:     &scriptedTxManager{tx: &scriptedTx{commitErr: errors.New("disk full")}},
			wantResult:  7,
			wantErrText: []string{"failed to commit transaction", "disk full"},
			wantCommits: 1,
		},
		{
			name:        "begin failure never runs the work",
			manager:     &scriptedTxManager{tx: &scriptedTx{}, beginErr: errors.New("pool exhausted")},
			wantErrText: []string{"failed to begin transaction", "pool exhausted"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ran := false
			result, err := WithTransactionResult(context.Background(), tt.manager, func(ctx context.Context, _ repositories.Transaction) (int, error) {
				ran = true
				if tt.workErr != nil {
					return 0, tt.workErr
				}
				return 7, nil
			})

			assert.Equal(t, tt.wantResult, result)
			switch {
			case tt.wantErrIs != nil:
				assert.Same(t, tt.wantErrIs, err)
			case len(tt.wantErrText) > 0:
				require.Error(t, err)
				for _, text := range tt.wantErrText {
					assert.Contains(t, err.Error(), text)
				}
			default:
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.manager.beginErr == nil, ran)
			assert.Equal(t, tt.wantCommits, tt.manager.tx.commits)
			assert.Equal(t, tt.wantRollbacks, tt.manager.tx.rollbacks)
		})
	}
}

func TestWithTransaction_WorkSeesTransactionContext(t *testing.T) {
	manager := &scriptedTxManager{tx: &scriptedTx{}}
	parent := context.WithValue(context.Background(), txMarker{}, "outer")

	err := WithTransaction(parent, manager, func(ctx context.Context, tx repositories.Transaction) error {
		assert.Same(t, manager.tx, ctx.Value(txMarker{}))
		assert.Same(t, manager.tx, tx)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, manager.tx.commits)
}

type nilContextTx struct{ scriptedTx }

func (*nilContextTx) Context() context.Context { return nil }

type nilContextManager struct{ tx *nilContextTx }

func (m *nilContextManager) Begin(context.Context) (repositories.Transaction, error) {
	return m.tx, nil
}

func (m *nilContextManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	return WithTransaction(ctx, m, fn)
}

func TestWithTransaction_FallsBackToCallerContext(t *testing.T) {
	manager := &nilContextManager{tx: &nilContextTx{}}
	parent := context.WithValue(context.Background(), txMarker{}, "caller")

	err := WithTransaction(parent, manager, func(ctx context.Context, _ repositories.Transaction) error {
		assert.Equal(t, "caller", ctx.Value(txMarker{}))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, manager.tx.commits)
}

func TestWithTransaction_PanicRollsBackAndRepanics(t *testing.T) {
	manager := &scriptedTxManager{tx: &scriptedTx{}}

	assert.PanicsWithValue(t, "boom", func() {
		_ = WithTransaction(context.Background(), manager, func(context.Context, repositories.Transaction) error {
			panic("boom")
		})
	})
	assert.Equal(t, 1, manager.tx.rollbacks)
	assert.Zero(t, manager.tx.commits)
}

func TestPostService_Create_WritesThroughTransactionContext(t *testing.T) {
	posts := new(MockPostRepository)
	manager := &scriptedTxManager{tx: &scriptedTx{}}
	service := NewPostService(posts, manager, validation.New(), nil, nil, zap.NewNop())
	actor := &policy.Actor{ID: uuid.New()}

	inTx := mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Value(txMarker{}) == manager.tx
	})
	posts.On("Create", inTx, mock.AnythingOfType("*models.Post")).Return(nil)
	posts.On("GetByID", mock.Anything, mock.Anything).Return(&models.Post{AuthorID: actor.ID, Title: "Hello"}, nil).Maybe()

	_, err := service.Create(context.Background(), actor, validation.Payload{"title": "Hello", "content": "A body long enough"})

	require.NoError(t, err)
	assert.Equal(t, 1, manager.tx.commits)
	posts.AssertCalled(t, "Create", inTx, mock.AnythingOfType("*models.Post"))
}
