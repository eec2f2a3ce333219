// Package dicomscp implements the service-class dispatch core of a DICOM
// upper-layer provider. Given a decoded DIMSE request primitive and the
// negotiated presentation context, it selects the service protocol by
// abstract syntax, drives the user's request handler, and emits the response
// primitives back on the same context.
package dicomscp

import (
	"fmt"
	"runtime/debug"

	"github.com/grailbio/go-dicom/dicomlog"
	"github.com/suyashkumar/dicom"

	"github.com/medigraph/go-dicomscp/commandset"
	"github.com/medigraph/go-dicomscp/dimse"
	"github.com/medigraph/go-dicomscp/events"
	"github.com/medigraph/go-dicomscp/presentation"
)

// Implementation-reserved failure codes, one block per service. P3.7 C.5.x
// reserves 0xCxxx for implementation-specific "Unable to Process" causes.
const (
	statusStoreHandlerFault uint16 = 0xC211

	statusFindUnableToDecode uint16 = 0xC310
	statusFindHandlerFault   uint16 = 0xC311
	statusFindUnableToEncode uint16 = 0xC312

	statusGetHandlerFault  uint16 = 0xC411
	statusGetBadSubOpCount uint16 = 0xC413

	statusMoveUnableToDecode uint16 = 0xC510
	statusMoveHandlerFault   uint16 = 0xC511
	statusMoveBadSubOpCount  uint16 = 0xC513
	statusMoveBadPrologue    uint16 = 0xC514

	// 0xA801 is the standard Move Destination Unknown code, not a reserved one.
	statusMoveDestinationUnknown uint16 = 0xA801

	statusMissingStatusElement uint16 = 0xC001
	statusInvalidStatusType    uint16 = 0xC002
)

// Dispatcher runs the service-class protocols for one association. It owns
// no state shared across associations; each request is processed to its
// terminal response before the next one starts on the same context.
type Dispatcher struct {
	msgr    dimse.Messenger
	cancels *dimse.CancelTracker
	events  *events.Registry
	assoc   Association
}

// NewDispatcher builds a dispatcher around the association's collaborators.
func NewDispatcher(msgr dimse.Messenger, cancels *dimse.CancelTracker, registry *events.Registry, assoc Association) *Dispatcher {
	return &Dispatcher{
		msgr:    msgr,
		cancels: cancels,
		events:  registry,
		assoc:   assoc,
	}
}

// isCancelled reports whether a C-CANCEL with msgID has been received. The
// read is destructive so a match is reported exactly once.
func (d *Dispatcher) isCancelled(msgID uint16) bool {
	if d.cancels == nil {
		return false
	}
	return d.cancels.Drain(msgID)
}

func (d *Dispatcher) payload(req dimse.Message, ctx presentation.Context) events.Payload {
	return events.Payload{
		Request:     req,
		Context:     ctx,
		IsCancelled: d.isCancelled,
	}
}

func (d *Dispatcher) send(rsp dimse.Message, ctx presentation.Context) error {
	if err := d.msgr.SendMessage(rsp, ctx.ContextID); err != nil {
		return fmt.Errorf("dicomscp: failed to send %v: %w", rsp, err)
	}
	return nil
}

// validateStatus normalises a handler-returned status onto rsp: a status
// record (*dicom.Dataset with a (0000,0900) Status element) copies every
// recognised element across, a bare integer sets the code directly, anything
// else is a cannot-understand failure. The resulting code is then resolved
// against the service registry; an unknown code is logged but still sent.
func (d *Dispatcher) validateStatus(status interface{}, rsp dimse.Message, reg *StatusRegistry) (uint16, StatusEntry, bool) {
	st := rsp.GetStatus()
	switch v := status.(type) {
	case *dicom.Dataset:
		if v == nil || !datasetHasTag(v, commandset.Status) {
			dicomlog.Vprintf(0, "dicomscp: status dataset returned by handler has no Status element")
			st.Status = dimse.StatusCode(statusMissingStatusElement)
			break
		}
		d.applyStatusDataset(v, rsp)
	default:
		if code, ok := toStatusCode(status); ok {
			st.Status = dimse.StatusCode(code)
		} else {
			dicomlog.Vprintf(0, "dicomscp: invalid status type %T returned by handler", status)
			st.Status = dimse.StatusCode(statusInvalidStatusType)
		}
	}

	code := uint16(st.Status)
	entry, known := reg.Lookup(code)
	if !known {
		dicomlog.Vprintf(0, "dicomscp: unknown status value 0x%04x returned by handler for %s", code, reg.Name())
	}
	return code, entry, known
}

// applyStatusDataset copies the record's elements onto the matching response
// attributes, warning for elements the primitive does not carry.
func (d *Dispatcher) applyStatusDataset(ds *dicom.Dataset, rsp dimse.Message) {
	st := rsp.GetStatus()
	for _, elem := range ds.Elements {
		switch elem.Tag {
		case commandset.Status:
			if code, err := elementUint16(elem); err == nil {
				st.Status = dimse.StatusCode(code)
			}
		case commandset.ErrorComment:
			if s, err := elementString(elem); err == nil {
				st.ErrorComment = s
			}
		case commandset.OffendingElement:
			if ints, ok := elem.Value.GetValue().([]int); ok {
				st.OffendingElement = ints
			}
		case commandset.AffectedSOPClassUID:
			if s, err := elementString(elem); err == nil {
				if setter, ok := rsp.(interface{ SetAffectedSOPClassUID(string) }); ok {
					setter.SetAffectedSOPClassUID(s)
				}
			}
		case commandset.AffectedSOPInstanceUID:
			setter, ok := rsp.(interface{ SetAffectedSOPInstanceUID(string) })
			if !ok {
				dicomlog.Vprintf(0, "dicomscp: status dataset contained an unsupported element %s", elem.Tag.String())
				continue
			}
			if s, err := elementString(elem); err == nil {
				setter.SetAffectedSOPInstanceUID(s)
			}
		default:
			dicomlog.Vprintf(0, "dicomscp: status dataset contained an unsupported element %s", elem.Tag.String())
		}
	}
}

// toStatusCode extracts a 16-bit status code from the integer kinds a
// handler may plausibly return.
func toStatusCode(v interface{}) (uint16, bool) {
	switch x := v.(type) {
	case dimse.StatusCode:
		return uint16(x), true
	case dimse.Status:
		return uint16(x.Status), true
	case uint16:
		return x, true
	case int:
		return uint16(x), true
	case int8:
		return uint16(x), true
	case int16:
		return uint16(x), true
	case int32:
		return uint16(x), true
	case int64:
		return uint16(x), true
	case uint:
		return uint16(x), true
	case uint8:
		return uint16(x), true
	case uint32:
		return uint16(x), true
	case uint64:
		return uint16(x), true
	default:
		return 0, false
	}
}

// producerFault is the sentinel a wrapped producer yields when the handler
// panics mid-stream.
type producerFault struct {
	err   error
	stack []byte
}

func (f *producerFault) Error() string { return f.err.Error() }

// safeProducer adapts a handler producer so that a panic inside Next becomes
// exactly one terminal fault value instead of unwinding the dispatch loop.
// Element order is preserved; production ends after the fault.
type safeProducer struct {
	inner events.Producer
	done  bool
}

func wrapProducer(p events.Producer) *safeProducer {
	return &safeProducer{inner: p}
}

func (s *safeProducer) Next() (v interface{}, fault *producerFault, ok bool) {
	if s.done || s.inner == nil {
		return nil, nil, false
	}
	defer func() {
		if rec := recover(); rec != nil {
			s.done = true
			v = nil
			fault = &producerFault{err: fmt.Errorf("handler producer panicked: %v", rec), stack: debug.Stack()}
			ok = true
		}
	}()
	v, ok = s.inner.Next()
	if !ok {
		s.done = true
	}
	return v, nil, ok
}

// asResult interprets a body yield as a (status, dataset) pair.
func asResult(v interface{}) (events.Result, bool) {
	switch x := v.(type) {
	case events.Result:
		return x, true
	case *events.Result:
		if x != nil {
			return *x, true
		}
	}
	return events.Result{}, false
}

// expectInt consumes a prologue yield as a count. Any Go integer kind is
// accepted; the sign is not checked.
func expectInt(v interface{}) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int8:
		return int(x), true
	case int16:
		return int(x), true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case uint:
		return int(x), true
	case uint8:
		return int(x), true
	case uint16:
		return int(x), true
	case uint32:
		return int(x), true
	case uint64:
		return int(x), true
	default:
		return 0, false
	}
}
