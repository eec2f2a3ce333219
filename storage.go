package dicomscp

import (
	"github.com/grailbio/go-dicom/dicomlog"

	"github.com/medigraph/go-dicomscp/dimse"
	"github.com/medigraph/go-dicomscp/events"
	"github.com/medigraph/go-dicomscp/presentation"
)

// storeSCP implements the Storage service: a single-shot exchange with the
// richer status taxonomy of P3.4 Annex B (warnings 0xB000/0xB006/0xB007 and
// the 0xA7xx/0xA9xx/0xCxxx failure blocks pass through unchanged).
func (d *Dispatcher) storeSCP(req *dimse.CStoreRq, ctx presentation.Context, reg *StatusRegistry) error {
	rsp := &dimse.CStoreRsp{
		AffectedSOPClassUID:       req.AffectedSOPClassUID,
		MessageIDBeingRespondedTo: req.MessageID,
		AffectedSOPInstanceUID:    req.AffectedSOPInstanceUID,
	}

	status, err := d.events.Trigger(events.CStore, d.payload(req, ctx))
	if err != nil {
		dicomlog.Vprintf(0, "dicomscp: exception in the handler bound to %s: %v", events.CStore, err)
		rsp.Status.Status = dimse.StatusCode(statusStoreHandlerFault)
		return d.send(rsp, ctx)
	}

	d.validateStatus(status, rsp, reg)
	return d.send(rsp, ctx)
}
