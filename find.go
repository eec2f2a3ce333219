package dicomscp

import (
	"github.com/grailbio/go-dicom/dicomlog"

	"github.com/medigraph/go-dicomscp/dimse"
	"github.com/medigraph/go-dicomscp/events"
	"github.com/medigraph/go-dicomscp/presentation"
)

// findSCP implements Query/Retrieve - Find (and, with their own registries,
// Basic Worklist Management and Substance Administration Query). The handler
// produces (status, identifier) pairs: each Pending match is encoded and
// streamed to the peer, the first terminal category ends the request, and
// exhaustion without an explicit terminal is reported as Success.
func (d *Dispatcher) findSCP(req *dimse.CFindRq, ctx presentation.Context, reg *StatusRegistry) error {
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
	if producer == nil {
		// No matches and no yields: a single immediate Success.
		producer = events.FromSlice(events.Result{Status: 0x0000})
	}

	stream := wrapProducer(producer)
	count := 0
	for {
		value, fault, ok := stream.Next()
		if !ok {
			break
		}

		var status interface{}
		var matchIdentifier interface{}
		if fault != nil {
			dicomlog.Vprintf(0, "dicomscp: exception raised by the C-FIND request handler: %v\n%s", fault.err, fault.stack)
			status = statusFindHandlerFault
		} else {
			pair, ok := asResult(value)
			if !ok {
				dicomlog.Vprintf(0, "dicomscp: the C-FIND request handler yielded %T, expected a (status, identifier) pair", value)
				status = statusFindHandlerFault
			} else {
				status, matchIdentifier = pair.Status, pair.Dataset
			}
		}

		_, entry, known := d.validateStatus(status, rsp, reg)
		if !known {
			// Unknown status: send once as terminal.
			return d.send(rsp, ctx)
		}

		switch entry.Category {
		case CategoryCancel:
			dicomlog.Vprintf(0, "dicomscp: received C-CANCEL-FIND request from peer")
			rsp.Identifier = nil
			return d.send(rsp, ctx)
		case CategoryFailure:
			dicomlog.Vprintf(0, "dicomscp: Find SCP response: (Failure - %s)", entry.Description)
			rsp.Identifier = nil
			return d.send(rsp, ctx)
		case CategorySuccess:
			// The SCP generates Success itself, but a handler yielding one
			// is still terminal.
			rsp.Identifier = nil
			return d.send(rsp, ctx)
		case CategoryPending:
			encoded := encodeIdentifier(matchIdentifier, ctx.ImplicitVR, ctx.LittleEndian)
			if len(encoded) == 0 {
				dicomlog.Vprintf(0, "dicomscp: failed to encode the identifier dataset yielded by the C-FIND handler")
				rsp.Status = dimse.Status{Status: dimse.StatusCode(statusFindUnableToEncode)}
				rsp.Identifier = nil
				return d.send(rsp, ctx)
			}
			rsp.Identifier = encoded
			count++
			dicomlog.Vprintf(1, "dicomscp: Find SCP response %d (Pending)", count)
			if err := d.send(rsp, ctx); err != nil {
				return err
			}
			rsp.Identifier = nil
		}
	}

	// Producer exhausted without an explicit terminal.
	rsp.Status = dimse.Status{Status: dimse.StatusSuccess}
	rsp.Identifier = nil
	dicomlog.Vprintf(1, "dicomscp: Find SCP response %d (Success)", count+1)
	return d.send(rsp, ctx)
}
