package core

import (
	"context"
	"time"

	"limscore/internal/blob"
	"limscore/internal/infra/persistence/memory"
	"limscore/pkg/domain"
)

// Grace windows governing deletion policy.
const (
	// partDeletionGrace is how long a part can be deleted by its owner
	// without administrator review.
	partDeletionGrace = 7 * 24 * time.Hour
	// containerWithdrawGrace is how long a pending container assignment can
	// be withdrawn by a non-admin.
	containerWithdrawGrace = 20 * time.Minute
)

type (
	Transaction     = domain.Transaction
	TransactionView = domain.TransactionView
	PersistentStore = domain.PersistentStore
)

// Logger receives structured events emitted around service operations. The
// audit trail is a domain feature; this logger is ambient diagnostics only.
type Logger interface {
	Log(ctx context.Context, event string, fields map[string]any)
}

type noopLogger struct{}

func (noopLogger) Log(context.Context, string, map[string]any) {}

// Service exposes the part registry, container ledger, pick-list manager, and
// audit recorder as transactional operations over a persistent store.
type Service struct {
	store   PersistentStore
	blobs   blob.Store
	metrics MetricsRecorder
	logger  Logger
	nowFn   func() time.Time
}

// ServiceOption customises service construction.
type ServiceOption func(*Service)

// WithLogger installs a structured event logger.
func WithLogger(l Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics installs an operation metrics recorder.
func WithMetrics(rec MetricsRecorder) ServiceOption {
	return func(s *Service) { s.metrics = rec }
}

// WithBlobStore installs the attachment blob backend.
func WithBlobStore(b blob.Store) ServiceOption {
	return func(s *Service) { s.blobs = b }
}

// WithClock overrides the clock used for grace-window checks and timestamps.
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.nowFn = fn
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		logger: noopLogger{},
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service and in-memory store with the given rules engine.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore { return s.store }

func (s *Service) now() time.Time { return s.nowFn() }

// observe records metrics and a diagnostic event for a completed operation.
func (s *Service) observe(ctx context.Context, op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	if s.metrics != nil {
		s.metrics.ObserveOperation(op, status, time.Since(start))
	}
	fields := map[string]any{"status": status}
	if err != nil {
		fields["error"] = err.Error()
	}
	s.logger.Log(ctx, op, fields)
}

// appendOperation writes one audit entry inside the surrounding transaction.
func appendOperation(tx Transaction, actor Actor, opType string, level LogLevel, data map[string]any) error {
	_, err := tx.AppendOperationLog(LogOperation{
		OperatorID:   actor.ID,
		OperatorName: actor.Name,
		Type:         opType,
		Level:        level,
		Data:         data,
	})
	return err
}

// authorize returns an UnauthorizedError unless the actor is the owner or an admin.
func authorize(actor Actor, ownerID, operation string) error {
	if actor.IsAdmin() || actor.ID == ownerID {
		return nil
	}
	return domain.UnauthorizedError{Name: actor.Name, Operation: operation}
}
