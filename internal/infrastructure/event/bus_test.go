package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/marvelstore/backend/internal/domain/shared"
	"github.com/marvelstore/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockHandler struct {
	mock.Mock
	types []string
}

func newMockHandler(types ...string) *mockHandler {
	return &mockHandler{types: types}
}

func (m *mockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockHandler) EventTypes() []string {
	return m.types
}

type panicHandler struct{}

func (panicHandler) Handle(context.Context, shared.DomainEvent) error { panic("boom") }
func (panicHandler) EventTypes() []string                             { return nil }

func orderPlaced() *trade.OrderPlacedEvent {
	id := uuid.New()
	return &trade.OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypeOrderPlaced, trade.AggregateTypeOrder, id),
		OrderID:         id,
		UserID:          uuid.New(),
		Items:           []trade.OrderItemInfo{{ProductID: uuid.New(), Quantity: 2}},
		TotalPrice:      decimal.RequireFromString("59.38"),
	}
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	placed := newMockHandler(trade.EventTypeOrderPlaced)
	cancelled := newMockHandler(trade.EventTypeOrderCancelled)
	all := newMockHandler()
	bus.Subscribe(placed)
	bus.Subscribe(cancelled)
	bus.Subscribe(all)

	event := orderPlaced()
	placed.On("Handle", ctx, event).Return(nil).Once()
	all.On("Handle", ctx, event).Return(nil).Once()

	require.NoError(t, bus.Publish(ctx, event))

	placed.AssertExpectations(t)
	all.AssertExpectations(t)
	cancelled.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	ctx := context.Background()

	h := newMockHandler(trade.EventTypeOrderCancelled)
	bus.Subscribe(h, trade.EventTypeOrderPlaced)

	event := orderPlaced()
	h.On("Handle", ctx, event).Return(nil).Once()
	require.NoError(t, bus.Publish(ctx, event))
	h.AssertExpectations(t)
}

func TestInMemoryEventBus_FailuresAreIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))
	ctx := context.Background()

	failing := newMockHandler(trade.EventTypeOrderPlaced)
	after := newMockHandler(trade.EventTypeOrderPlaced)
	bus.Subscribe(failing)
	bus.Subscribe(panicHandler{})
	bus.Subscribe(after)

	event := orderPlaced()
	failing.On("Handle", ctx, event).Return(errors.New("cache down")).Once()
	after.On("Handle", ctx, event).Return(nil).Once()

	assert.NoError(t, bus.Publish(ctx, event))
	after.AssertExpectations(t)

	entries := logs.FilterMessage("Event handler failed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "cache down", entries[0].ContextMap()["error"])
	assert.Contains(t, entries[1].ContextMap()["error"], "boom")
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newMockHandler(trade.EventTypeOrderPlaced)
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), orderPlaced()))
	h.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	assert.Zero(t, bus.registry.Len())
}

func TestHandlerRegistry_Handlers(t *testing.T) {
	r := NewHandlerRegistry()
	typed := newMockHandler()
	wildcard := newMockHandler()
	r.Register(typed, trade.EventTypeOrderPlaced, trade.EventTypeOrderPaid)
	r.Register(wildcard)

	assert.Equal(t, []shared.EventHandler{typed, wildcard}, r.Handlers(trade.EventTypeOrderPlaced))
	assert.Equal(t, []shared.EventHandler{wildcard}, r.Handlers("Unknown"))
	assert.Equal(t, 3, r.Len())

	r.Unregister(typed)
	assert.Equal(t, []shared.EventHandler{wildcard}, r.Handlers(trade.EventTypeOrderPaid))
	assert.Equal(t, 1, r.Len())
}
