package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_Register_SpecificTypes(t *testing.T) {
	r := NewHandlerRegistry()
	h := newTestHandler()
	r.Register(h, "ReadingRecorded", "PaymentRecorded")

	assert.Len(t, r.HandlersFor("ReadingRecorded"), 1)
	assert.Len(t, r.HandlersFor("PaymentRecorded"), 1)
	assert.Empty(t, r.HandlersFor("PaymentDeleted"))
}

func TestHandlerRegistry_Register_Wildcard(t *testing.T) {
	r := NewHandlerRegistry()
	h := newTestHandler()
	r.Register(h)

	assert.Len(t, r.HandlersFor("ReadingRecorded"), 1)
	assert.Len(t, r.HandlersFor("anything"), 1)
}

func TestHandlerRegistry_HandlersFor_TypedBeforeWildcard(t *testing.T) {
	r := NewHandlerRegistry()
	wildcard := newTestHandler()
	typed := newTestHandler()
	r.Register(wildcard)
	r.Register(typed, "PaymentRecorded")

	handlers := r.HandlersFor("PaymentRecorded")
	assert.Len(t, handlers, 2)
	assert.Same(t, typed, handlers[0])
	assert.Same(t, wildcard, handlers[1])
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	r := NewHandlerRegistry()
	keep := newTestHandler()
	drop := newTestHandler()
	r.Register(keep, "ReadingRecorded")
	r.Register(drop, "ReadingRecorded", "PaymentRecorded")
	r.Register(drop)

	r.Unregister(drop)

	handlers := r.HandlersFor("ReadingRecorded")
	assert.Len(t, handlers, 1)
	assert.Same(t, keep, handlers[0])
	assert.Empty(t, r.HandlersFor("PaymentRecorded"))
}

func TestHandlerRegistry_HandlersFor_ReturnsCopy(t *testing.T) {
	r := NewHandlerRegistry()
	r.Register(newTestHandler(), "ReadingRecorded")

	handlers := r.HandlersFor("ReadingRecorded")
	handlers[0] = nil

	assert.NotNil(t, r.HandlersFor("ReadingRecorded")[0])
}
