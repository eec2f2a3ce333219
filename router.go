package dicomscp

import (
	"errors"
	"fmt"

	"github.com/grailbio/go-dicom/dicomlog"
	"github.com/grailbio/go-dicom/dicomuid"

	"github.com/medigraph/go-dicomscp/dimse"
	"github.com/medigraph/go-dicomscp/presentation"
	"github.com/medigraph/go-dicomscp/sopclass"
)

// ErrInvalidAbstractSyntax is returned when no service claims the
// presentation context's abstract syntax.
var ErrInvalidAbstractSyntax = errors.New("dicomscp: no service class for abstract syntax")

type protocolKind int

const (
	protoEcho protocolKind = iota
	protoStore
	protoFind
	protoGet
	protoMove
	protoRelevantPatient
)

// serviceEntry pairs the protocol to run with the status registry that
// applies under it.
type serviceEntry struct {
	kind     protocolKind
	statuses *StatusRegistry
}

var serviceTable = buildServiceTable()

func buildServiceTable() map[string]serviceEntry {
	table := make(map[string]serviceEntry)
	add := func(classes []sopclass.SOPUID, entry serviceEntry) {
		for _, c := range classes {
			table[c.UID] = entry
		}
	}
	add(sopclass.VerificationClasses, serviceEntry{protoEcho, VerificationStatuses})
	add(sopclass.StorageClasses, serviceEntry{protoStore, StorageStatuses})
	add(sopclass.QRFindClasses, serviceEntry{protoFind, QRFindStatuses})
	add(sopclass.QRGetClasses, serviceEntry{protoGet, QRGetStatuses})
	add(sopclass.QRMoveClasses, serviceEntry{protoMove, QRMoveStatuses})
	// Basic Worklist and Substance Administration permit C-FIND only.
	add(sopclass.BasicWorklistClasses, serviceEntry{protoFind, ModalityWorklistStatuses})
	add(sopclass.SubstanceAdministrationQueryClasses, serviceEntry{protoFind, SubstanceAdministrationStatuses})
	// Relevant Patient Information Query permits only the single-match
	// C-FIND variant.
	add(sopclass.RelevantPatientQueryClasses, serviceEntry{protoRelevantPatient, RelevantPatientStatuses})
	return table
}

// Dispatch runs the service protocol selected by the presentation context's
// abstract syntax, driving the bound handler until the request's terminal
// response has been sent. The returned error reports routing problems and
// transport failures; protocol-level handler problems become failure
// statuses on the wire instead.
func (d *Dispatcher) Dispatch(req dimse.Message, ctx presentation.Context) error {
	if err := ctx.Validate(); err != nil {
		return err
	}
	entry, ok := serviceTable[ctx.AbstractSyntax]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidAbstractSyntax, ctx.AbstractSyntax)
	}
	dicomlog.Vprintf(1, "dicomscp: dispatching %v on %s", req, dicomuid.UIDString(ctx.AbstractSyntax))

	switch entry.kind {
	case protoEcho:
		r, ok := req.(*dimse.CEchoRq)
		if !ok {
			return dispatchMismatch(req, ctx)
		}
		return d.echoSCP(r, ctx, entry.statuses)
	case protoStore:
		r, ok := req.(*dimse.CStoreRq)
		if !ok {
			return dispatchMismatch(req, ctx)
		}
		return d.storeSCP(r, ctx, entry.statuses)
	case protoFind:
		r, ok := req.(*dimse.CFindRq)
		if !ok {
			return dispatchMismatch(req, ctx)
		}
		return d.findSCP(r, ctx, entry.statuses)
	case protoGet:
		r, ok := req.(*dimse.CGetRq)
		if !ok {
			return dispatchMismatch(req, ctx)
		}
		return d.getSCP(r, ctx, entry.statuses)
	case protoMove:
		r, ok := req.(*dimse.CMoveRq)
		if !ok {
			return dispatchMismatch(req, ctx)
		}
		return d.moveSCP(r, ctx, entry.statuses)
	case protoRelevantPatient:
		r, ok := req.(*dimse.CFindRq)
		if !ok {
			return dispatchMismatch(req, ctx)
		}
		return d.relevantPatientSCP(r, ctx, entry.statuses)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidAbstractSyntax, ctx.AbstractSyntax)
	}
}

func dispatchMismatch(req dimse.Message, ctx presentation.Context) error {
	return fmt.Errorf("dicomscp: request %T not valid for abstract syntax %s", req, ctx.AbstractSyntax)
}
