// Package audit records who changed what. Entries are queued and written by
// a small worker pool so request handling never waits on the audit table.
package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/blog-platform/models"
	"github.com/upb/blog-platform/repositories"
)

// ErrNotRunning is returned when the workers are not accepting entries
var ErrNotRunning = errors.New("audit service not running")

// RequestMeta identifies the HTTP request an entry originated from
type RequestMeta struct {
	RequestID string
	IPAddress string
	UserAgent string
}

type requestMetaKey struct{}

// WithRequestMeta returns a context carrying meta
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext returns the request metadata stored in ctx, if any
func RequestMetaFromContext(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta, ok
}

// Service handles asynchronous audit logging
type Service struct {
	repo        repositories.AuditRepository
	logger      *zap.Logger
	events      chan *models.AuditLog
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	started     bool
	stopped     bool
	mu          sync.RWMutex
}

// Config sizes the worker pool
type Config struct {
	BufferSize  int
	WorkerCount int
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  256,
		WorkerCount: 2,
	}
}

// NewService creates a Service. Call Start before recording entries.
func NewService(repo repositories.AuditRepository, logger *zap.Logger, config Config) *Service {
	if config.BufferSize <= 0 || config.WorkerCount <= 0 {
		config = DefaultConfig()
	}
	return &Service{
		repo:        repo,
		logger:      logger,
		events:      make(chan *models.AuditLog, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
	}
}

// Start launches the workers
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started audit service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))
	return nil
}

// Stop drains the queue and waits up to timeout for the workers to finish
func (s *Service) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.stopped = true
	s.logger.Info("stopping audit service", zap.Int("pending_events", len(s.events)))
	close(s.events)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("audit service stopped gracefully")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("audit service stop timeout after %v", timeout)
	}
}

// Enqueue queues entry without blocking. A full buffer drops the entry.
func (s *Service) Enqueue(entry *models.AuditLog) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started || s.stopped {
		return ErrNotRunning
	}

	select {
	case s.events <- entry:
		return nil
	default:
		s.logger.Warn("audit event channel full, dropping event",
			zap.String("action", string(entry.Action)),
			zap.String("resource_type", entry.ResourceType))
		return fmt.Errorf("audit event buffer full")
	}
}

// Record stamps entry with the request metadata found in ctx and queues it.
// Failures are logged and never surface to the caller.
func (s *Service) Record(ctx context.Context, entry *models.AuditLog) {
	if meta, ok := RequestMetaFromContext(ctx); ok {
		entry.WithRequest(meta.RequestID, meta.IPAddress, meta.UserAgent)
	}
	if err := s.Enqueue(entry); err != nil {
		s.logger.Warn("audit entry not recorded",
			zap.Error(err),
			zap.String("action", string(entry.Action)))
	}
}

// RecordAction builds and records an entry for one action on a resource
func (s *Service) RecordAction(ctx context.Context, action models.AuditAction, actorID *uuid.UUID, resourceType string, resourceID uuid.UUID, details interface{}) {
	entry := models.NewAuditLog(action, resourceType).
		WithActor(actorID).
		WithResource(resourceID)
	if details != nil {
		entry.WithDetails(details)
	}
	s.Record(ctx, entry)
}

// List returns one page of entries, newest first
func (s *Service) List(ctx context.Context, req models.PageRequest) (*models.Page[*models.AuditLog], error) {
	entries, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return models.NewPage(entries, req, total), nil
}

func (s *Service) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("audit worker started", zap.Int("worker_id", id))

	for entry := range s.events {
		if err := s.write(entry); err != nil {
			s.logger.Error("failed to process audit event",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("action", string(entry.Action)),
				zap.String("resource_type", entry.ResourceType))
		}
	}

	s.logger.Debug("audit worker stopped", zap.Int("worker_id", id))
}

func (s *Service) write(entry *models.AuditLog) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

// Stats reports the queue state
type Stats struct {
	BufferSize    int
	PendingEvents int
	WorkerCount   int
	Started       bool
}

// GetStats returns statistics about the audit service
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		BufferSize:    s.bufferSize,
		PendingEvents: len(s.events),
		WorkerCount:   s.workerCount,
		Started:       s.started && !s.stopped,
	}
}
