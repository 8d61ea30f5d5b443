// Package store implements the data-access layer: one manager owning a
// session-scoped transaction per logical operation, with row locking for
// stock mutations, retry on transient connectivity failures, and plain
// snapshot values returned to callers instead of live entities.
package store

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"pasar/internal/apperrors"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Publisher delivers domain events after a transaction commits. A nil
// publisher disables event delivery.
type Publisher interface {
	Publish(routingKey string, body []byte) error
}

// Manager orchestrates all database operations. Every public method runs as
// one transaction executed through the retry wrapper; commit, rollback and
// session teardown are owned here and never by callers.
type Manager struct {
	db     *gorm.DB
	log    zerolog.Logger
	events Publisher
	retry  retryer
}

// Option configures a Manager.
type Option func(*Manager)

// WithPublisher attaches an event publisher for order and stock events.
func WithPublisher(p Publisher) Option {
	return func(m *Manager) { m.events = p }
}

// WithRetry overrides the retry bound and the fixed delay between attempts.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(m *Manager) {
		m.retry.maxRetries = maxRetries
		m.retry.delay = delay
	}
}

// NewManager creates a Manager on top of an already-opened GORM database.
func NewManager(db *gorm.DB, log zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		db:  db,
		log: log,
		retry: retryer{
			maxRetries: 3,
			delay:      time.Second,
			log:        log,
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// run executes fn as a single transaction through the retry wrapper. The
// transaction commits when fn returns nil and rolls back on any error.
func (m *Manager) run(operation string, fn func(tx *gorm.DB) error) error {
	return m.retry.Do(operation, func() error {
		err := m.db.Transaction(fn)
		if err != nil {
			m.log.Error().Err(err).Str("operation", operation).Msg("database operation failed")
		}
		return err
	})
}

// publish sends a domain event, logging (never propagating) failures.
func (m *Manager) publish(routingKey string, payload map[string]interface{}) {
	if m.events == nil {
		return
	}
	payload["event_id"] = uuid.New().String()
	body, err := json.Marshal(payload)
	if err != nil {
		m.log.Error().Err(err).Str("routing_key", routingKey).Msg("failed to marshal event")
		return
	}
	if err := m.events.Publish(routingKey, body); err != nil {
		m.log.Warn().Err(err).Str("routing_key", routingKey).Msg("failed to publish event")
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// wrapNotFound maps gorm's not-found sentinel to a domain validation error
// for operations that require the record to exist.
func wrapNotFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewValidation(format, args...)
	}
	return err
}
