package event

import (
	"context"
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

type stubHandler struct {
	name string
}

func (h *stubHandler) Handle(context.Context, shared.DomainEvent) error { return nil }

func (h *stubHandler) EventTypes() []string { return nil }

func TestRegistry_TypedAndWildcard(t *testing.T) {
	r := newRegistry()
	stock := &stubHandler{name: "stock"}
	audit := &stubHandler{name: "audit"}

	r.add(stock, "StockReserved", "StockReleased")
	r.add(audit)

	handlers := r.handlersFor("StockReserved")
	assert.Equal(t, []shared.EventHandler{stock, audit}, handlers, "typed handlers come before wildcards")

	handlers = r.handlersFor("PaymentRecorded")
	assert.Equal(t, []shared.EventHandler{audit}, handlers)
	assert.Equal(t, 3, r.count())
}

func TestRegistry_Remove(t *testing.T) {
	r := newRegistry()
	stock := &stubHandler{name: "stock"}
	other := &stubHandler{name: "other"}

	r.add(stock, "StockReserved", "StockDeducted")
	r.add(other, "StockDeducted")
	r.add(stock)

	r.remove(stock)

	assert.Empty(t, r.handlersFor("StockReserved"))
	assert.Equal(t, []shared.EventHandler{other}, r.handlersFor("StockDeducted"))
	assert.Equal(t, 1, r.count())
	_, ok := r.byType["StockReserved"]
	assert.False(t, ok, "empty type entries are dropped")
}

func TestRegistry_SnapshotIsIndependent(t *testing.T) {
	r := newRegistry()
	first := &stubHandler{name: "first"}
	r.add(first, "StockCredited")

	snapshot := r.handlersFor("StockCredited")
	r.add(&stubHandler{name: "second"}, "StockCredited")

	assert.Len(t, snapshot, 1)
	assert.Len(t, r.handlersFor("StockCredited"), 2)
}
