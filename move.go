package dicomscp

import (
	"github.com/go-playground/validator/v10"
	"github.com/grailbio/go-dicom/dicomlog"
	"github.com/suyashkumar/dicom"

	"github.com/medigraph/go-dicomscp/dimse"
	"github.com/medigraph/go-dicomscp/events"
	"github.com/medigraph/go-dicomscp/presentation"
)

// moveOriginatorID tags every C-STORE sub-operation issued on behalf of a
// C-MOVE with the same originator message ID.
const moveOriginatorID uint16 = 1

var destinationValidate = validator.New()

// moveSCP implements Query/Retrieve - Move. The handler's producer is
// three-phase: the first yield is the (address, port) destination, the
// second the number of sub-operations, the rest (status, dataset) pairs.
// Sub-operations run on a freshly-opened outbound association to the move
// destination AE; the outbound transport is torn down on every exit path.
func (d *Dispatcher) moveSCP(req *dimse.CMoveRq, ctx presentation.Context, reg *StatusRegistry) error {
	rsp := &dimse.CMoveRsp{
		AffectedSOPClassUID:       req.AffectedSOPClassUID,
		MessageIDBeingRespondedTo: req.MessageID,
	}

	identifier, err := decodeDataset(req.Identifier, ctx.ImplicitVR, ctx.LittleEndian)
	if err != nil {
		dicomlog.Vprintf(0, "dicomscp: failed to decode the C-MOVE request identifier: %v", err)
		rsp.Status = dimse.Status{
			Status:       dimse.StatusCode(statusMoveUnableToDecode),
			ErrorComment: "Unable to decode the dataset",
		}
		return d.send(rsp, ctx)
	}
	dicomlog.Vprintf(2, "dicomscp: Move SCP request identifier: %d elements", len(identifier.Elements))

	result, err := d.events.Trigger(events.CMove, d.payload(req, ctx))
	if err != nil {
		dicomlog.Vprintf(0, "dicomscp: exception in the handler bound to %s: %v", events.CMove, err)
		rsp.Status = dimse.Status{Status: dimse.StatusCode(statusMoveHandlerFault)}
		return d.send(rsp, ctx)
	}

	producer, _ := result.(events.Producer)
	stream := wrapProducer(producer)

	// First yield: the destination. Second yield: the sub-operation count.
	destValue, destFault, destOK := stream.Next()
	countValue, countFault, countOK := stream.Next()
	if !destOK || !countOK || destFault != nil || countFault != nil {
		dicomlog.Vprintf(0, "dicomscp: the C-MOVE request handler must yield the (address, port) of the destination AE, then yield the number of sub-operations, then yield (status, dataset) pairs")
		rsp.Status = dimse.Status{Status: dimse.StatusCode(statusMoveBadPrologue)}
		return d.send(rsp, ctx)
	}

	noSubOps, ok := expectInt(countValue)
	if !ok {
		dicomlog.Vprintf(0, "dicomscp: the C-MOVE request handler yielded an invalid number of sub-operations value")
		rsp.Status = dimse.Status{Status: dimse.StatusCode(statusMoveBadSubOpCount)}
		return d.send(rsp, ctx)
	}

	destination, ok := asDestination(destValue)
	if !ok || destinationValidate.Struct(destination) != nil {
		dicomlog.Vprintf(0, "dicomscp: unknown move destination %q", req.MoveDestination)
		rsp.Status = dimse.Status{Status: dimse.StatusCode(statusMoveDestinationUnknown)}
		return d.send(rsp, ctx)
	}

	storeAssoc, err := d.assoc.Associate(destination.Address, destination.Port, req.MoveDestination)
	if err != nil || storeAssoc == nil || !storeAssoc.IsEstablished() {
		dicomlog.Vprintf(0, "dicomscp: Move SCP unable to associate with destination AE %q: %v", req.MoveDestination, err)
		rsp.Status = dimse.Status{Status: dimse.StatusCode(statusMoveDestinationUnknown)}
		sendErr := d.send(rsp, ctx)
		if storeAssoc != nil {
			storeAssoc.Close()
		}
		return sendErr
	}
	// The outbound transport must not outlive this invocation, whatever the
	// exit path.
	defer storeAssoc.Close()

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
			dicomlog.Vprintf(0, "dicomscp: exception raised by the C-MOVE request handler: %v\n%s", fault.err, fault.stack)
			status = statusMoveHandlerFault
		} else {
			pair, okPair := asResult(value)
			if !okPair {
				dicomlog.Vprintf(0, "dicomscp: the C-MOVE request handler yielded %T, expected a (status, dataset) pair", value)
				status = statusMoveHandlerFault
			} else {
				status, dataset = pair.Status, pair.Dataset
			}
		}

		// All sub-operations are complete; further yields are ignored.
		if tracker.remaining <= 0 {
			dicomlog.Vprintf(0, "dicomscp: the C-MOVE request handler yielded further (status, dataset) results but these will be ignored as the sub-operations are complete")
			break
		}

		_, entry, known := d.validateStatus(status, rsp, reg)
		if !known {
			storeAssoc.Release()
			return d.send(rsp, ctx)
		}

		switch entry.Category {
		case CategoryCancel:
			dicomlog.Vprintf(0, "dicomscp: Move SCP received C-CANCEL-MOVE request from peer")
			storeAssoc.Release()
			tracker.pendingCounters(&rsp.NumberOfRemainingSuboperations, &rsp.NumberOfCompletedSuboperations, &rsp.NumberOfFailedSuboperations, &rsp.NumberOfWarningSuboperations)
			rsp.Identifier = d.failedListIdentifier(dataset, tracker, ctx)
			return d.send(rsp, ctx)

		case CategoryFailure, CategoryWarning:
			dicomlog.Vprintf(0, "dicomscp: Move SCP result (%s - %s)", entry.Category, entry.Description)
			storeAssoc.Release()
			tracker.terminalCounters(true, &rsp.NumberOfRemainingSuboperations, &rsp.NumberOfCompletedSuboperations, &rsp.NumberOfFailedSuboperations, &rsp.NumberOfWarningSuboperations)
			rsp.Identifier = d.failedListIdentifier(dataset, tracker, ctx)
			return d.send(rsp, ctx)

		case CategorySuccess:
			storeAssoc.Release()
			d.finishRetrieve(&rsp.Status, &rsp.Identifier, tracker, ctx)
			tracker.terminalCounters(false, &rsp.NumberOfRemainingSuboperations, &rsp.NumberOfCompletedSuboperations, &rsp.NumberOfFailedSuboperations, &rsp.NumberOfWarningSuboperations)
			return d.send(rsp, ctx)

		case CategoryPending:
			if dataset == nil {
				continue
			}
			ds, okDS := dataset.(*dicom.Dataset)
			if !okDS || ds == nil {
				dicomlog.Vprintf(0, "dicomscp: received an invalid dataset from the C-MOVE request handler")
				tracker.recordInvalidDataset()
				rsp.Identifier = nil
				tracker.pendingCounters(&rsp.NumberOfRemainingSuboperations, &rsp.NumberOfCompletedSuboperations, &rsp.NumberOfFailedSuboperations, &rsp.NumberOfWarningSuboperations)
				if err := d.send(rsp, ctx); err != nil {
					return err
				}
				continue
			}

			msgID := subOpMessageID(req.MessageID, pendingIndex)
			pendingIndex++
			storeStatus, storeErr := storeAssoc.SendCStore(ds, msgID, d.assoc.AETitle(), moveOriginatorID)
			category, description := storeOutcome(storeStatus, storeErr)
			dicomlog.Vprintf(1, "dicomscp: Move SCP received Store SCU response (%s - %s)", category, description)
			tracker.record(category, ds)

			rsp.Identifier = nil
			tracker.pendingCounters(&rsp.NumberOfRemainingSuboperations, &rsp.NumberOfCompletedSuboperations, &rsp.NumberOfFailedSuboperations, &rsp.NumberOfWarningSuboperations)
			if err := d.send(rsp, ctx); err != nil {
				return err
			}
		}
	}

	// Producer exhausted without an explicit terminal.
	storeAssoc.Release()
	d.finishRetrieve(&rsp.Status, &rsp.Identifier, tracker, ctx)
	tracker.terminalCounters(false, &rsp.NumberOfRemainingSuboperations, &rsp.NumberOfCompletedSuboperations, &rsp.NumberOfFailedSuboperations, &rsp.NumberOfWarningSuboperations)
	return d.send(rsp, ctx)
}

// asDestination interprets the C-MOVE prologue's first yield.
func asDestination(v interface{}) (events.Destination, bool) {
	switch x := v.(type) {
	case events.Destination:
		return x, true
	case *events.Destination:
		if x != nil {
			return *x, true
		}
	}
	return events.Destination{}, false
}
