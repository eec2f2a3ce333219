// Package events dispatches DIMSE service requests to user-bound handlers.
// A handler bound to a single-shot event (C-ECHO, C-STORE) returns one
// status value; a handler bound to a streamed event (C-FIND, C-GET, C-MOVE)
// returns a Producer the service protocol drains.
package events

import (
	"fmt"
	"sync"

	"github.com/medigraph/go-dicomscp/dimse"
	"github.com/medigraph/go-dicomscp/presentation"
)

// Type identifies an intervention event.
type Type int

const (
	CEcho Type = iota
	CStore
	CFind
	CGet
	CMove
)

var typeNames = map[Type]string{
	CEcho:  "EVT_C_ECHO",
	CStore: "EVT_C_STORE",
	CFind:  "EVT_C_FIND",
	CGet:   "EVT_C_GET",
	CMove:  "EVT_C_MOVE",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("EVT_UNKNOWN(%d)", int(t))
}

// Payload is handed to the bound handler. Context is an immutable snapshot
// of the presentation context. IsCancelled lets a streamed handler poll for
// a matching C-CANCEL between yields; the probe is one-shot per cancel.
type Payload struct {
	Request     dimse.Message
	Context     presentation.Context
	IsCancelled func(msgID uint16) bool
}

// Handler produces the service response(s) for one request. Single-shot
// events return a status value: an integer kind or a *dicom.Dataset status
// record. Streamed events return a Producer.
type Handler func(Payload) (interface{}, error)

// Producer is a pull-driven, single-pass sequence of handler yields. Next
// returns the next value and true, or a zero value and false once the
// sequence is exhausted. Ownership is exclusive to one protocol invocation.
type Producer interface {
	Next() (interface{}, bool)
}

// Result is a (status, dataset) pair yielded by a streamed handler: the
// match payload for C-FIND, the instance to relay for C-GET/C-MOVE. Dataset
// stays loosely typed so the protocols can police its shape themselves.
type Result struct {
	Status  interface{}
	Dataset interface{}
}

// Destination is the first yield of a C-MOVE handler: where to open the
// outbound association.
type Destination struct {
	Address string `validate:"required"`
	Port    int    `validate:"required,gt=0,lte=65535"`
}

// ErrNotBound is returned by Trigger when no handler is bound to the event.
var ErrNotBound = fmt.Errorf("events: no handler bound")

// Registry maps event types to bound handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Type]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Type]Handler)}
}

// Bind installs h as the handler for t, replacing any previous binding.
func (r *Registry) Bind(t Type, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[t] = h
}

// Trigger invokes the handler bound to t. A panic inside the handler is
// recovered and reported as an error so a faulty handler cannot take down
// the dispatch loop.
func (r *Registry) Trigger(t Type, p Payload) (result interface{}, err error) {
	r.mu.RLock()
	h := r.handlers[t]
	r.mu.RUnlock()
	if h == nil {
		return nil, fmt.Errorf("%w to %s", ErrNotBound, t)
	}
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = fmt.Errorf("events: handler bound to %s panicked: %v", t, rec)
		}
	}()
	return h(p)
}

// sliceProducer yields a fixed set of values in order.
type sliceProducer struct {
	values []interface{}
	pos    int
}

func (p *sliceProducer) Next() (interface{}, bool) {
	if p.pos >= len(p.values) {
		return nil, false
	}
	v := p.values[p.pos]
	p.pos++
	return v, true
}

// FromSlice builds a Producer over the given values.
func FromSlice(values ...interface{}) Producer {
	return &sliceProducer{values: values}
}

// channelProducer yields values received from a channel until it closes.
type channelProducer struct {
	ch <-chan interface{}
}

func (p *channelProducer) Next() (interface{}, bool) {
	v, ok := <-p.ch
	return v, ok
}

// FromChannel builds a Producer that drains ch until it is closed.
func FromChannel(ch <-chan interface{}) Producer {
	return &channelProducer{ch: ch}
}

// ProducerFunc adapts a pull function to the Producer interface.
type ProducerFunc func() (interface{}, bool)

func (f ProducerFunc) Next() (interface{}, bool) { return f() }
