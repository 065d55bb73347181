package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/blog-platform/models"
)

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	mock.Mock
	mu           sync.Mutex
	insertedLogs []*models.AuditLog
}

func (m *MockAuditRepository) Insert(ctx context.Context, log *models.AuditLog) error {
	args := m.Called(ctx, log)
	m.mu.Lock()
	m.insertedLogs = append(m.insertedLogs, log)
	m.mu.Unlock()
	return args.Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, page models.PageRequest) ([]*models.AuditLog, int, error) {
	args := m.Called(ctx, page)
	if logs := args.Get(0); logs != nil {
		return logs.([]*models.AuditLog), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *MockAuditRepository) GetInsertedLogs() []*models.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.AuditLog(nil), m.insertedLogs...)
}

func startService(t *testing.T, repo *MockAuditRepository, config Config) *Service {
	t.Helper()
	service := NewService(repo, zap.NewNop(), config)
	require.NoError(t, service.Start())
	return service
}

func TestService_StartStop(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	service := startService(t, mockRepo, Config{BufferSize: 10, WorkerCount: 2})

	stats := service.GetStats()
	assert.True(t, stats.Started)
	assert.Equal(t, 2, stats.WorkerCount)
	assert.Equal(t, 10, stats.BufferSize)

	assert.Error(t, service.Start())
	require.NoError(t, service.Stop(5*time.Second))
	assert.False(t, service.GetStats().Started)

	// stopping twice and enqueueing after stop are errors, not panics
	assert.ErrorIs(t, service.Stop(time.Second), ErrNotRunning)
	assert.Error(t, service.Enqueue(models.NewAuditLog(models.AuditActionPostCreated, models.ResourcePost)))
}

func TestService_EnqueueBeforeStart(t *testing.T) {
	service := NewService(new(MockAuditRepository), zap.NewNop(), DefaultConfig())
	assert.Error(t, service.Enqueue(models.NewAuditLog(models.AuditActionPostCreated, models.ResourcePost)))
}

func TestService_RecordAction(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	service := startService(t, mockRepo, DefaultConfig())

	actorID, postID := uuid.New(), uuid.New()
	ctx := WithRequestMeta(context.Background(), RequestMeta{
		RequestID: "req-1",
		IPAddress: "10.0.0.1",
		UserAgent: "test-agent",
	})

	service.RecordAction(ctx, models.AuditActionPostCreated, &actorID, models.ResourcePost, postID,
		map[string]interface{}{"title": "Hello"})

	require.NoError(t, service.Stop(5*time.Second))

	logs := mockRepo.GetInsertedLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditActionPostCreated, logs[0].Action)
	assert.Equal(t, actorID, *logs[0].ActorID)
	assert.Equal(t, postID, *logs[0].ResourceID)
	assert.Equal(t, "req-1", logs[0].RequestID)
	assert.Equal(t, "10.0.0.1", logs[0].IPAddress)
	assert.JSONEq(t, `{"title":"Hello"}`, string(logs[0].Details))
}

func TestService_RecordGuestAction(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	service := startService(t, mockRepo, DefaultConfig())

	service.RecordAction(context.Background(), models.AuditActionCommentCreated, nil, models.ResourceComment, uuid.New(), nil)
	require.NoError(t, service.Stop(5*time.Second))

	logs := mockRepo.GetInsertedLogs()
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].ActorID)
	assert.Empty(t, logs[0].RequestID)
	assert.Nil(t, logs[0].Details)
}

func TestService_ConcurrentRecording(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	service := startService(t, mockRepo, Config{BufferSize: 1000, WorkerCount: 5})

	goroutineCount := 10
	eventsPerGoroutine := 10
	var wg sync.WaitGroup

	for i := 0; i < goroutineCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < eventsPerGoroutine; j++ {
				service.Record(context.Background(), models.NewAuditLog(models.AuditActionCommentCreated, models.ResourceComment))
			}
		}()
	}
	wg.Wait()

	require.NoError(t, service.Stop(5*time.Second))
	assert.Len(t, mockRepo.GetInsertedLogs(), goroutineCount*eventsPerGoroutine)
}

func TestService_BufferFull(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	release := make(chan struct{})
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		<-release
	})
	service := startService(t, mockRepo, Config{BufferSize: 2, WorkerCount: 1})

	successCount := 0
	for i := 0; i < 10; i++ {
		if err := service.Enqueue(models.NewAuditLog(models.AuditActionPostUpdated, models.ResourcePost)); err == nil {
			successCount++
		}
	}

	// one entry may be held by the blocked worker, two sit in the buffer
	assert.LessOrEqual(t, successCount, 3)
	assert.GreaterOrEqual(t, successCount, 2)

	close(release)
	require.NoError(t, service.Stop(5*time.Second))
}

func TestService_InsertErrorIsLogged(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(assert.AnError)
	service := startService(t, mockRepo, DefaultConfig())

	service.Record(context.Background(), models.NewAuditLog(models.AuditActionPostDeleted, models.ResourcePost))
	require.NoError(t, service.Stop(5*time.Second))
	mockRepo.AssertNumberOfCalls(t, "Insert", 1)
}

func TestService_List(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	req := models.NewPageRequest(1, 20)
	entries := []*models.AuditLog{models.NewAuditLog(models.AuditActionUserRegistered, models.ResourceUser)}
	mockRepo.On("List", mock.Anything, req).Return(entries, 1, nil)

	service := NewService(mockRepo, zap.NewNop(), DefaultConfig())
	page, err := service.List(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Len(t, page.Items, 1)
	mockRepo.AssertExpectations(t)
}
