// Package testutil builds a complete ledger over an in-memory SQLite
// database for service and API tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/erp/ledger/internal/application"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/infrastructure/event"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Clock is a settable clock shared by every service of a Stack
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at at
func NewClock(at time.Time) *Clock {
	return &Clock{now: at.UTC()}
}

// Now returns the current instant
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var _ shared.Clock = (*Clock)(nil)

// Stack is a ledger wired end to end: database, services and event bus
type Stack struct {
	DB       *persistence.Database
	Services *application.Services
	Bus      *event.Bus
	Events   *RecordingHandler
	Clock    *Clock
	Logger   *zap.Logger
}

type stackOptions struct {
	cfg    application.Config
	logger *zap.Logger
	start  time.Time
}

// StackOption customizes NewStack
type StackOption func(*stackOptions)

// WithAlertsOnCredit evaluates stock alerts after every credit
func WithAlertsOnCredit() StackOption {
	return func(o *stackOptions) { o.cfg.EvaluateAlertsOnCredit = true }
}

// WithMetrics records service metrics on m
func WithMetrics(m *Metrics) StackOption {
	return func(o *stackOptions) { o.cfg.Metrics = m.LedgerMetrics }
}

// WithLogger routes service logs to logger
func WithLogger(logger *zap.Logger) StackOption {
	return func(o *stackOptions) { o.logger = logger }
}

// WithStartTime sets the initial clock instant
func WithStartTime(at time.Time) StackOption {
	return func(o *stackOptions) { o.start = at }
}

// NewStack opens a fresh in-memory database, migrates it and wires every
// service. Every published event is captured in Events.
func NewStack(t *testing.T, opts ...StackOption) *Stack {
	t.Helper()

	o := stackOptions{
		logger: zap.NewNop(),
		start:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite}, nil)
	require.NoError(t, err, "open sqlite")
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, persistence.AutoMigrate(db.DB), "migrate sqlite")

	clock := NewClock(o.start)
	services := application.NewServices(persistence.NewGormTransactionScope(db.DB), clock, o.cfg, o.logger)

	bus := event.NewBus(o.logger)
	events := NewRecordingHandler()
	bus.Subscribe(events)
	services.SetEventPublisher(bus)

	return &Stack{
		DB:       db,
		Services: services,
		Bus:      bus,
		Events:   events,
		Clock:    clock,
		Logger:   o.logger,
	}
}

// NewTestUUID derives a stable UUID from seed
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// ActorID is the acting user used across tests
func ActorID() uuid.UUID {
	return NewTestUUID("test-actor")
}

// RecordingHandler captures every event delivered to it
type RecordingHandler struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	err    error
}

// NewRecordingHandler creates a handler subscribed to all event types
func NewRecordingHandler() *RecordingHandler {
	return &RecordingHandler{}
}

// EventTypes returns nil so the handler receives every event
func (h *RecordingHandler) EventTypes() []string {
	return nil
}

// Handle records ev and returns the configured error
func (h *RecordingHandler) Handle(_ context.Context, ev shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	return h.err
}

// SetError makes later deliveries fail with err
func (h *RecordingHandler) SetError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// Events returns a copy of everything recorded
func (h *RecordingHandler) Events() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.events))
	copy(out, h.events)
	return out
}

// Types returns the recorded event types in delivery order
func (h *RecordingHandler) Types() []string {
	events := h.Events()
	types := make([]string, len(events))
	for i, ev := range events {
		types[i] = ev.EventType()
	}
	return types
}

// Count returns how many events of eventType were recorded
func (h *RecordingHandler) Count(eventType string) int {
	n := 0
	for _, ev := range h.Events() {
		if ev.EventType() == eventType {
			n++
		}
	}
	return n
}

// Reset forgets recorded events
func (h *RecordingHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = nil
	h.err = nil
}
