package dicomscp

import (
	"github.com/grailbio/go-dicom/dicomlog"
	"github.com/suyashkumar/dicom"

	"github.com/medigraph/go-dicomscp/commandset"
	"github.com/medigraph/go-dicomscp/dimse"
	"github.com/medigraph/go-dicomscp/events"
	"github.com/medigraph/go-dicomscp/presentation"
)

// echoSCP implements the Verification service. P3.7 Table 9.3-13 mandates a
// Success status, so a handler fault or malformed status defaults the
// response to 0x0000 rather than a failure code. Exactly one response is
// emitted.
func (d *Dispatcher) echoSCP(req *dimse.CEchoRq, ctx presentation.Context, reg *StatusRegistry) error {
	rsp := &dimse.CEchoRsp{
		MessageIDBeingRespondedTo: req.MessageID,
		AffectedSOPClassUID:       req.AffectedSOPClassUID,
	}

	status, err := d.events.Trigger(events.CEcho, d.payload(req, ctx))
	if err != nil {
		dicomlog.Vprintf(0, "dicomscp: exception in the handler bound to %s, responding with a default Success status: %v", events.CEcho, err)
		rsp.Status = dimse.Success
		return d.send(rsp, ctx)
	}

	switch v := status.(type) {
	case nil:
		rsp.Status = dimse.Success
	case *dicom.Dataset:
		if v == nil || !datasetHasTag(v, commandset.Status) {
			dicomlog.Vprintf(0, "dicomscp: status dataset returned by the handler bound to %s has no Status element, responding with a default Success status", events.CEcho)
			rsp.Status = dimse.Success
			break
		}
		d.applyStatusDataset(v, rsp)
	default:
		code, ok := toStatusCode(status)
		if !ok {
			dicomlog.Vprintf(0, "dicomscp: invalid status type %T returned by the handler bound to %s, responding with a default Success status", status, events.CEcho)
			rsp.Status = dimse.Success
			break
		}
		rsp.Status.Status = dimse.StatusCode(code)
	}

	if _, known := reg.Lookup(uint16(rsp.Status.Status)); !known {
		dicomlog.Vprintf(0, "dicomscp: unknown status value 0x%04x returned by the handler bound to %s", uint16(rsp.Status.Status), events.CEcho)
	}

	return d.send(rsp, ctx)
}
