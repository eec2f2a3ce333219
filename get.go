package dicomscp

import (
	"github.com/grailbio/go-dicom/dicomlog"
	"github.com/suyashkumar/dicom"

	"github.com/medigraph/go-dicomscp/dimse"
	"github.com/medigraph/go-dicomscp/events"
	"github.com/medigraph/go-dicomscp/presentation"
	"github.com/medigraph/go-dicomscp/sopclass"
)

// getSCP implements Query/Retrieve - Get. The handler's producer is
// two-phase: the first yield is the total number of C-STORE sub-operations,
// the rest are (status, dataset) pairs. Each Pending dataset is relayed to
// the requesting peer through a C-STORE sub-operation on this same
// association, the tracker aggregates the outcomes, and the terminal
// response reports them.
func (d *Dispatcher) getSCP(req *dimse.CGetRq, ctx presentation.Context, reg *StatusRegistry) error {
	rsp := &dimse.CGetRsp{
		AffectedSOPClassUID:       req.AffectedSOPClassUID,
		MessageIDBeingRespondedTo: req.MessageID,
	}

	result, err := d.events.Trigger(events.CGet, d.payload(req, ctx))
	if err != nil {
		dicomlog.Vprintf(0, "dicomscp: exception in the handler bound to %s: %v", events.CGet, err)
		rsp.Status = dimse.Status{Status: dimse.StatusCode(statusGetHandlerFault)}
		return d.send(rsp, ctx)
	}

	producer, _ := result.(events.Producer)
	stream := wrapProducer(producer)

	// First yield: the number of sub-operations.
	first, fault, ok := stream.Next()
	noSubOps := 0
	if !ok || fault != nil {
		ok = false
	} else {
		noSubOps, ok = expectInt(first)
	}
	if !ok {
		dicomlog.Vprintf(0, "dicomscp: the C-GET request handler yielded an invalid number of sub-operations value")
		rsp.Status = dimse.Status{Status: dimse.StatusCode(statusGetBadSubOpCount)}
		return d.send(rsp, ctx)
	}

	tracker := newSubOpTracker(noSubOps)
	pendingIndex := 0

	for {
		value, fault, ok := stream.Next()
		if !ok {
			break
		}

		var status interface{}
		var dataset interface{}
		if fault != nil {
			dicomlog.Vprintf(0, "dicomscp: exception raised by the C-GET request handler: %v\n%s", fault.err, fault.stack)
			status = statusGetHandlerFault
		} else {
			pair, okPair := asResult(value)
			if !okPair {
				dicomlog.Vprintf(0, "dicomscp: the C-GET request handler yielded %T, expected a (status, dataset) pair", value)
				status = statusGetHandlerFault
			} else {
				status, dataset = pair.Status, pair.Dataset
			}
		}

		// All sub-operations are complete; further yields are ignored.
		if tracker.remaining <= 0 {
			dicomlog.Vprintf(0, "dicomscp: the C-GET request handler yielded further (status, dataset) results but these will be ignored as the sub-operations are complete")
			break
		}

		_, entry, known := d.validateStatus(status, rsp, reg)
		if !known {
			return d.send(rsp, ctx)
		}

		switch entry.Category {
		case CategoryCancel:
			dicomlog.Vprintf(0, "dicomscp: Get SCP received C-CANCEL-GET request from peer")
			tracker.pendingCounters(&rsp.NumberOfRemainingSuboperations, &rsp.NumberOfCompletedSuboperations, &rsp.NumberOfFailedSuboperations, &rsp.NumberOfWarningSuboperations)
			rsp.Identifier = d.failedListIdentifier(dataset, tracker, ctx)
			return d.send(rsp, ctx)

		case CategoryFailure, CategoryWarning:
			dicomlog.Vprintf(0, "dicomscp: Get SCP result (%s - %s)", entry.Category, entry.Description)
			tracker.terminalCounters(true, &rsp.NumberOfRemainingSuboperations, &rsp.NumberOfCompletedSuboperations, &rsp.NumberOfFailedSuboperations, &rsp.NumberOfWarningSuboperations)
			rsp.Identifier = d.failedListIdentifier(dataset, tracker, ctx)
			return d.send(rsp, ctx)

		case CategorySuccess:
			d.finishRetrieve(&rsp.Status, &rsp.Identifier, tracker, ctx)
			tracker.terminalCounters(false, &rsp.NumberOfRemainingSuboperations, &rsp.NumberOfCompletedSuboperations, &rsp.NumberOfFailedSuboperations, &rsp.NumberOfWarningSuboperations)
			return d.send(rsp, ctx)

		case CategoryPending:
			if dataset == nil {
				continue
			}
			ds, okDS := dataset.(*dicom.Dataset)
			if !okDS || ds == nil {
				dicomlog.Vprintf(0, "dicomscp: received an invalid dataset from the C-GET request handler")
				tracker.recordInvalidDataset()
				rsp.Identifier = nil
				tracker.pendingCounters(&rsp.NumberOfRemainingSuboperations, &rsp.NumberOfCompletedSuboperations, &rsp.NumberOfFailedSuboperations, &rsp.NumberOfWarningSuboperations)
				if err := d.send(rsp, ctx); err != nil {
					return err
				}
				continue
			}

			if ctx.AbstractSyntax == sopclass.CompositeInstanceRetrieveWithoutBulkDataGet {
				if removed := stripBulkData(ds); len(removed) > 0 {
					dicomlog.Vprintf(0, "dicomscp: the Composite Instance Retrieve Without Bulk Data service is requested but a yielded dataset contains the following (removed) bulk data elements: %v", removed)
				}
			}

			msgID := subOpMessageID(req.MessageID, pendingIndex)
			pendingIndex++
			storeStatus, storeErr := d.assoc.SendCStore(ds, msgID)
			category, description := storeOutcome(storeStatus, storeErr)
			dicomlog.Vprintf(1, "dicomscp: Get SCP received Store SCU response (%s - %s)", category, description)
			tracker.record(category, ds)

			rsp.Identifier = nil
			tracker.pendingCounters(&rsp.NumberOfRemainingSuboperations, &rsp.NumberOfCompletedSuboperations, &rsp.NumberOfFailedSuboperations, &rsp.NumberOfWarningSuboperations)
			if err := d.send(rsp, ctx); err != nil {
				return err
			}
		}
	}

	// Producer exhausted without an explicit terminal.
	d.finishRetrieve(&rsp.Status, &rsp.Identifier, tracker, ctx)
	tracker.terminalCounters(false, &rsp.NumberOfRemainingSuboperations, &rsp.NumberOfCompletedSuboperations, &rsp.NumberOfFailedSuboperations, &rsp.NumberOfWarningSuboperations)
	return d.send(rsp, ctx)
}

// finishRetrieve fills the Success/Warning terminal of a retrieve: pure
// Success when every sub-operation completed cleanly, otherwise a 0xB000
// Warning carrying the failed-instance list.
func (d *Dispatcher) finishRetrieve(status *dimse.Status, identifier *[]byte, tracker *subOpTracker, ctx presentation.Context) {
	if tracker.failed == 0 && tracker.warning == 0 {
		*status = dimse.Status{Status: dimse.StatusSuccess}
		*identifier = nil
		return
	}
	*status = dimse.Status{Status: dimse.StatusSubOpsCompleteWithFailures}
	*identifier = encodeIdentifier(failedInstancesDataset(tracker.failedInstances), ctx.ImplicitVR, ctx.LittleEndian)
}

// failedListIdentifier encodes the dataset accompanying a Cancel, Failure or
// Warning terminal. When the handler's dataset does not carry a
// FailedSOPInstanceUIDList, one is synthesised from the tracker.
func (d *Dispatcher) failedListIdentifier(dataset interface{}, tracker *subOpTracker, ctx presentation.Context) []byte {
	ds, ok := dataset.(*dicom.Dataset)
	if !ok || ds == nil || !datasetHasTag(ds, tagFailedSOPInstanceUIDList) {
		ds = failedInstancesDataset(tracker.failedInstances)
	}
	return encodeIdentifier(ds, ctx.ImplicitVR, ctx.LittleEndian)
}
