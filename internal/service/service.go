package service

import (
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/obs"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// LedgerService owns the account store and transaction log of one storage backend.
// Transfers and account opening hold the write lock from validation to commit;
// views hold the read lock, so they see either the state before a transfer or
// after it, never a partial one.
type LedgerService struct {
	mu      sync.RWMutex
	storage *storage.Storage
	logger  *logrus.Logger
	metrics *obs.Metrics
	now     func() time.Time
	newID   func() (string, error)
}

// Option configures a LedgerService.
type Option func(*LedgerService)

// WithClock replaces time.Now as the source of transaction timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

// WithIDGenerator replaces the UUIDv7 id generator.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *LedgerService) { s.newID = gen }
}

func WithLogger(logger *logrus.Logger) Option {
	return func(s *LedgerService) { s.logger = logger }
}

func WithMetrics(metrics *obs.Metrics) Option {
	return func(s *LedgerService) { s.metrics = metrics }
}

// NewLedgerService creates a LedgerService over store.
func NewLedgerService(store *storage.Storage, opts ...Option) *LedgerService {
	s := &LedgerService{
		storage: store,
		logger:  logrus.StandardLogger(),
		now:     time.Now,
		newID:   newUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newUUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
