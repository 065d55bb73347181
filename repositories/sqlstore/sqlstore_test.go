package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/blog-platform/models"
	"github.com/upb/blog-platform/repositories"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return Wrap(sqlDB, "postgres", zap.NewNop()), mock
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())
	user := models.NewUser("Jane", "jane@example.com", "hash")

	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, "Jane", "jane@example.com", "hash", false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	tests := []struct {
		name   string
		driver error
	}{
		{"postgres unique violation", &pq.Error{Code: "23505"}},
		{"sqlite unique violation", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewUserRepository(db, zap.NewNop())

			mock.ExpectExec("INSERT INTO users").WillReturnError(tt.driver)

			err := repo.Create(context.Background(), models.NewUser("Jane", "jane@example.com", "hash"))
			assert.ErrorIs(t, err, repositories.ErrDuplicate)
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "is_admin", "created_at", "updated_at"}).
			AddRow(id.String(), "Jane", "jane@example.com", "hash", true, now, now))

	user, err := repo.GetByEmail(context.Background(), " Jane@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.True(t, user.IsAdmin())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestUserRepository_EmailExists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users").
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.EmailExists(context.Background(), "JANE@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_SetAdminMissingUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())

	mock.ExpectExec("UPDATE users SET is_admin").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetAdmin(context.Background(), uuid.New(), true)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestPostRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db, zap.NewNop())
	author := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM posts").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery("ORDER BY p.created_at DESC").
		WithArgs(9, 9).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "content", "created_at", "updated_at", "name", "email", "comments_count"}).
			AddRow(uuid.NewString(), author.String(), "Ten", "content ten", now, now, "Jane", "jane@example.com", 3).
			AddRow(uuid.NewString(), author.String(), "Eleven", "content eleven", now, now, "Jane", "jane@example.com", 0))

	posts, total, err := repo.List(context.Background(), models.NewPageRequest(2, 9))
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, posts, 2)
	assert.Equal(t, author, posts[0].Author.ID)
	assert.Equal(t, 3, *posts[0].CommentsCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_UpdateNeverWritesOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db, zap.NewNop())
	post := models.NewPost(uuid.New(), "Title", "Some content")

	mock.ExpectExec("UPDATE posts SET title = \\$1, content = \\$2, updated_at = \\$3 WHERE id = \\$4").
		WithArgs("Title", "Some content", sqlmock.AnyArg(), post.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), post))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_DeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db, zap.NewNop())

	mock.ExpectExec("DELETE FROM posts").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestPostRepository_GetAuthorID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostRepository(db, zap.NewNop())
	owner := uuid.New()

	mock.ExpectQuery("SELECT user_id FROM posts").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(owner.String()))

	got, err := repo.GetAuthorID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, owner, got)
}

func TestCommentRepository_GuestAndAuthoredRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCommentRepository(db, zap.NewNop())
	postID := uuid.New()
	author := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM comments").
		WithArgs(postID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("ORDER BY c.created_at ASC").
		WithArgs(postID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "user_id", "comment", "created_at", "updated_at", "name", "email"}).
			AddRow(uuid.NewString(), postID.String(), nil, "guest words", now, now, nil, nil).
			AddRow(uuid.NewString(), postID.String(), author.String(), "member words", now, now, "Sam", "sam@example.com"))

	comments, total, err := repo.ListByPost(context.Background(), postID, repositories.OldestFirst, models.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, comments, 2)

	assert.True(t, comments[0].IsGuest())
	assert.Equal(t, models.GuestName, comments[0].AuthorName())
	assert.Equal(t, author, *comments[1].AuthorID)
	assert.Equal(t, "Sam", comments[1].AuthorName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_ListPaginatedNewestFirst(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCommentRepository(db, zap.NewNop())
	postID := uuid.New()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM comments").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("ORDER BY c.created_at DESC, c.id DESC LIMIT \\$2 OFFSET \\$3").
		WithArgs(postID, 10, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "user_id", "comment", "created_at", "updated_at", "name", "email"}))

	comments, _, err := repo.ListByPost(context.Background(), postID, repositories.NewestFirst, models.NewPageRequest(2, 10))
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_CreateGuest(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCommentRepository(db, zap.NewNop())
	comment := models.NewComment(uuid.New(), nil, "hello")

	mock.ExpectExec("INSERT INTO comments").
		WithArgs(comment.ID, comment.PostID, nil, "hello", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), comment))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_DeleteUnknown(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepository(db, zap.NewNop())

	mock.ExpectExec("DELETE FROM access_tokens WHERE id").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestTokenRepository_DeleteExpired(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepository(db, zap.NewNop())

	mock.ExpectExec("DELETE FROM access_tokens WHERE expires_at").WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteExpired(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestAuditRepository_InsertGuestEntry(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAuditRepository(db, zap.NewNop())
	entry := models.NewAuditLog(models.AuditActionCommentCreated, models.ResourceComment).
		WithResource(uuid.New()).
		WithDetails(map[string]string{"post_id": "p"})

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(entry.ID, nil, "comment_created", "comment", sqlmock.AnyArg(), `{"post_id":"p"}`, "", "", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager_InTransaction(t *testing.T) {
	t.Run("commits and routes repositories through the transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTransactionManager(db, zap.NewNop())
		posts := NewPostRepository(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM posts").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := tm.InTransaction(context.Background(), func(ctx context.Context, _ repositories.Transaction) error {
			return posts.Delete(ctx, uuid.New())
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTransactionManager(db, zap.NewNop())
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := tm.InTransaction(context.Background(), func(context.Context, repositories.Transaction) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetExecutor(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db, zap.NewNop())

	assert.Equal(t, db.DB, GetExecutor(context.Background(), db))

	mock.ExpectBegin()
	tx, err := tm.Begin(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, Executor(db.DB), GetExecutor(tx.Context(), db))
}

func TestDB_HealthCheck(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()
	db := Wrap(sqlDB, "postgres", zap.NewNop())

	mock.ExpectPing()
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	assert.NoError(t, db.HealthCheck(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
