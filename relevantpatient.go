package dicomscp

import (
	"github.com/grailbio/go-dicom/dicomlog"

	"github.com/medigraph/go-dicomscp/dimse"
	"github.com/medigraph/go-dicomscp/events"
	"github.com/medigraph/go-dicomscp/presentation"
)

// relevantPatientSCP implements the Relevant Patient Information Query: a
// C-FIND variant permitting at most one match. The protocol is one-shot by
// design: only the first yield is consumed. Zero yields is Success; a single
// Pending is followed immediately by the final Success; any other category
// is the lone terminal.
func (d *Dispatcher) relevantPatientSCP(req *dimse.CFindRq, ctx presentation.Context, reg *StatusRegistry) error {
	rsp := &dimse.CFindRsp{
		AffectedSOPClassUID:       req.AffectedSOPClassUID,
		MessageIDBeingRespondedTo: req.MessageID,
	}

	identifier, err := decodeDataset(req.Identifier, ctx.ImplicitVR, ctx.LittleEndian)
	if err != nil {
		dicomlog.Vprintf(0, "dicomscp: failed to decode the C-FIND request identifier: %v", err)
		rsp.Status = dimse.Status{
			Status:       dimse.StatusCode(statusFindUnableToDecode),
			ErrorComment: "Unable to decode the dataset",
		}
		return d.send(rsp, ctx)
	}
	dicomlog.Vprintf(2, "dicomscp: Find SCP request identifier: %d elements", len(identifier.Elements))

	result, err := d.events.Trigger(events.CFind, d.payload(req, ctx))
	if err != nil {
		dicomlog.Vprintf(0, "dicomscp: exception in the handler bound to %s: %v", events.CFind, err)
		rsp.Status = dimse.Status{Status: dimse.StatusCode(statusFindHandlerFault)}
		return d.send(rsp, ctx)
	}

	producer, _ := result.(events.Producer)
	stream := wrapProducer(producer)

	value, fault, ok := stream.Next()
	if !ok {
		// There were no matches, so return Success.
		rsp.Status = dimse.Status{Status: dimse.StatusSuccess}
		dicomlog.Vprintf(1, "dicomscp: Find SCP response: (Success)")
		return d.send(rsp, ctx)
	}

	var status interface{}
	var matchIdentifier interface{}
	if fault != nil {
		dicomlog.Vprintf(0, "dicomscp: exception raised by the C-FIND request handler: %v\n%s", fault.err, fault.stack)
		status = statusFindHandlerFault
	} else {
		pair, okPair := asResult(value)
		if !okPair {
			dicomlog.Vprintf(0, "dicomscp: the C-FIND request handler yielded %T, expected a (status, identifier) pair", value)
			status = statusFindHandlerFault
		} else {
			status, matchIdentifier = pair.Status, pair.Dataset
		}
	}

	_, entry, known := d.validateStatus(status, rsp, reg)
	if !known {
		return d.send(rsp, ctx)
	}

	switch entry.Category {
	case CategoryCancel:
		dicomlog.Vprintf(0, "dicomscp: received C-CANCEL-FIND request from peer")
		return d.send(rsp, ctx)
	case CategoryFailure:
		dicomlog.Vprintf(0, "dicomscp: Find SCP response: (Failure - %s)", entry.Description)
		return d.send(rsp, ctx)
	case CategorySuccess:
		dicomlog.Vprintf(1, "dicomscp: Find SCP response: (Success)")
		return d.send(rsp, ctx)
	case CategoryPending:
		encoded := encodeIdentifier(matchIdentifier, ctx.ImplicitVR, ctx.LittleEndian)
		if len(encoded) == 0 {
			dicomlog.Vprintf(0, "dicomscp: failed to encode the identifier dataset yielded by the C-FIND handler")
			rsp.Status = dimse.Status{Status: dimse.StatusCode(statusFindUnableToEncode)}
			return d.send(rsp, ctx)
		}
		rsp.Identifier = encoded
		dicomlog.Vprintf(1, "dicomscp: Find SCP response: (Pending)")
		if err := d.send(rsp, ctx); err != nil {
			return err
		}
		// A hypothetical second yield is never drained; send the final
		// Success immediately.
		rsp.Identifier = nil
		rsp.Status = dimse.Status{Status: dimse.StatusSuccess}
		dicomlog.Vprintf(1, "dicomscp: Find SCP response: (Success)")
		return d.send(rsp, ctx)
	}
	return d.send(rsp, ctx)
}
