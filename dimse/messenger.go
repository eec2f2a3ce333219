package dimse

import "sync"

// Messenger delivers response primitives to the peer on a presentation
// context. Implementations serialise the command set (and data payload, if
// any) and hand the result to the upper-layer transport. An error is fatal
// to the current request: the service protocol stops emitting and unwinds.
type Messenger interface {
	SendMessage(msg Message, contextID byte) error
}

// CancelTracker records received C-CANCEL primitives keyed by the message ID
// they respond to. Reads are destructive: Drain reports a matching cancel
// exactly once, so a handler polling between yields cannot double-report.
type CancelTracker struct {
	mu   sync.Mutex
	reqs map[MessageID]*CCancelRq
}

func NewCancelTracker() *CancelTracker {
	return &CancelTracker{reqs: make(map[MessageID]*CCancelRq)}
}

// Put records a received C-CANCEL primitive.
func (t *CancelTracker) Put(req *CCancelRq) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reqs[req.MessageIDBeingRespondedTo] = req
}

// Drain reports whether a C-CANCEL for msgID has been received, deleting the
// entry when present.
func (t *CancelTracker) Drain(msgID MessageID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.reqs[msgID]; ok {
		delete(t.reqs, msgID)
		return true
	}
	return false
}
