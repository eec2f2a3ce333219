package dicomscp

import (
	"github.com/grailbio/go-dicom/dicomlog"
	"github.com/suyashkumar/dicom"

	"github.com/medigraph/go-dicomscp/dimse"
)

// subOpTracker counts the C-STORE sub-operations of one C-GET or C-MOVE
// invocation and remembers which SOP instances failed. It is owned
// exclusively by that invocation. Invariant until the terminal response:
// remaining + failed + warning + completed == the handler's initial total.
type subOpTracker struct {
	remaining int
	failed    int
	warning   int
	completed int

	failedInstances []string
}

func newSubOpTracker(total int) *subOpTracker {
	return &subOpTracker{remaining: total}
}

// record applies one sub-operation outcome. Warnings and failures both add
// the instance UID to the failed list, matching the storage service's
// failed-instance reporting.
func (t *subOpTracker) record(category Category, ds *dicom.Dataset) {
	switch category {
	case CategoryFailure:
		t.failed++
		t.addFailedInstance(ds)
	case CategoryWarning:
		t.warning++
		t.addFailedInstance(ds)
	case CategorySuccess:
		t.completed++
	}
	t.remaining--
}

// recordInvalidDataset counts a pending yield whose dataset was unusable as
// a failure with an empty instance UID. The remaining count is untouched:
// no sub-operation was attempted.
func (t *subOpTracker) recordInvalidDataset() {
	t.failed++
	t.failedInstances = append(t.failedInstances, "")
}

func (t *subOpTracker) addFailedInstance(ds *dicom.Dataset) {
	if uid, ok := sopInstanceUID(ds); ok {
		t.failedInstances = append(t.failedInstances, uid)
	}
}

func counter(v int) *uint16 {
	u := uint16(v)
	return &u
}

// pendingCounters fills a Pending response: all four counters present,
// remaining included even at zero.
func (t *subOpTracker) pendingCounters(remaining, completed, failed, warning **uint16) {
	*remaining = counter(t.remaining)
	*completed = counter(t.completed)
	*failed = counter(t.failed)
	*warning = counter(t.warning)
}

// terminalCounters fills a terminal response: remaining is absent. When
// foldRemaining is set (Failure and Warning terminals) the not-yet-attempted
// sub-operations count as failed.
func (t *subOpTracker) terminalCounters(foldRemaining bool, remaining, completed, failed, warning **uint16) {
	*remaining = nil
	failedTotal := t.failed
	if foldRemaining {
		failedTotal += t.remaining
	}
	*completed = counter(t.completed)
	*failed = counter(failedTotal)
	*warning = counter(t.warning)
}

// storeOutcome translates a C-STORE sub-operation result through the
// Storage service registry. A transport error, or a status the registry
// does not know, is a failure with an unknown cause.
func storeOutcome(status dimse.Status, err error) (Category, string) {
	if err != nil {
		dicomlog.Vprintf(0, "dicomscp: C-STORE sub-operation failed: %v", err)
		return CategoryFailure, "Unknown"
	}
	entry, ok := StorageStatuses.Lookup(uint16(status.Status))
	if !ok {
		dicomlog.Vprintf(0, "dicomscp: C-STORE sub-operation returned unknown status 0x%04x", uint16(status.Status))
		return CategoryFailure, "Unknown"
	}
	return entry.Category, entry.Description
}

// subOpMessageID derives the message ID of the i-th (zero-based) C-STORE
// sub-operation. Message IDs are VR US; uint16 arithmetic wraps mod 65536.
func subOpMessageID(reqMessageID uint16, i int) uint16 {
	return reqMessageID + uint16(i) + 1
}
