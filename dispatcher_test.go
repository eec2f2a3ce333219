package dicomscp

import (
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/medigraph/go-dicomscp/dimse"
	"github.com/medigraph/go-dicomscp/events"
	"github.com/medigraph/go-dicomscp/presentation"
)

// fakeMessenger records every emitted response. The protocols reuse one
// response struct, so each message is snapshotted at send time.
type fakeMessenger struct {
	sent       []dimse.Message
	contextIDs []byte
	err        error
}

func (m *fakeMessenger) SendMessage(msg dimse.Message, contextID byte) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, snapshot(msg))
	m.contextIDs = append(m.contextIDs, contextID)
	return nil
}

func snapshot(m dimse.Message) dimse.Message {
	switch v := m.(type) {
	case *dimse.CEchoRsp:
		c := *v
		return &c
	case *dimse.CStoreRsp:
		c := *v
		return &c
	case *dimse.CFindRsp:
		c := *v
		return &c
	case *dimse.CGetRsp:
		c := *v
		return &c
	case *dimse.CMoveRsp:
		c := *v
		return &c
	default:
		return m
	}
}

type storeCall struct {
	ds    *dicom.Dataset
	msgID uint16
}

type subStoreCall struct {
	ds            *dicom.Dataset
	msgID         uint16
	originatorAET string
	originatorID  uint16
}

// fakeAssociation implements Association for the protocol tests.
type fakeAssociation struct {
	aeTitle     string
	storeFn     func(ds *dicom.Dataset, msgID uint16) (dimse.Status, error)
	associateFn func(address string, port int, calledAETitle string) (SubAssociation, error)
	storeCalls  []storeCall
}

func (a *fakeAssociation) AETitle() string { return a.aeTitle }

func (a *fakeAssociation) SendCStore(ds *dicom.Dataset, msgID uint16) (dimse.Status, error) {
	a.storeCalls = append(a.storeCalls, storeCall{ds: ds, msgID: msgID})
	if a.storeFn == nil {
		return dimse.Success, nil
	}
	return a.storeFn(ds, msgID)
}

func (a *fakeAssociation) Associate(address string, port int, calledAETitle string) (SubAssociation, error) {
	if a.associateFn == nil {
		return &fakeSubAssociation{established: true}, nil
	}
	return a.associateFn(address, port, calledAETitle)
}

// fakeSubAssociation implements SubAssociation.
type fakeSubAssociation struct {
	established bool
	storeFn     func(ds *dicom.Dataset, msgID uint16) (dimse.Status, error)
	storeCalls  []subStoreCall
	released    int
	closed      int
}

func (s *fakeSubAssociation) IsEstablished() bool { return s.established }

func (s *fakeSubAssociation) SendCStore(ds *dicom.Dataset, msgID uint16, originatorAET string, originatorID uint16) (dimse.Status, error) {
	s.storeCalls = append(s.storeCalls, subStoreCall{ds: ds, msgID: msgID, originatorAET: originatorAET, originatorID: originatorID})
	if s.storeFn == nil {
		return dimse.Success, nil
	}
	return s.storeFn(ds, msgID)
}

func (s *fakeSubAssociation) Release() error {
	s.released++
	return nil
}

func (s *fakeSubAssociation) Close() error {
	s.closed++
	return nil
}

// testDispatcher wires a dispatcher around fakes, binding the given handlers.
func testDispatcher(msgr *fakeMessenger, assoc *fakeAssociation, bindings map[events.Type]events.Handler) *Dispatcher {
	registry := events.NewRegistry()
	for evt, handler := range bindings {
		registry.Bind(evt, handler)
	}
	if assoc == nil {
		assoc = &fakeAssociation{aeTitle: "TESTSCP"}
	}
	return NewDispatcher(msgr, dimse.NewCancelTracker(), registry, assoc)
}

func testContext(abstractSyntax string) presentation.Context {
	return presentation.NewContext(1, abstractSyntax, presentation.ImplicitVRLittleEndian)
}

func mustElement(t *testing.T, tg tag.Tag, v interface{}) *dicom.Element {
	t.Helper()
	elem, err := dimse.NewElement(tg, v)
	if err != nil {
		t.Fatalf("NewElement(%v, %v): %v", tg, v, err)
	}
	return elem
}

// instanceDataset builds a dataset carrying only (0008,0018).
func instanceDataset(t *testing.T, sopInstanceUID string) *dicom.Dataset {
	t.Helper()
	return &dicom.Dataset{Elements: []*dicom.Element{
		mustElement(t, tagSOPInstanceUID, sopInstanceUID),
	}}
}

// patientDataset builds a dataset carrying only (0010,0020) Patient ID.
func patientDataset(t *testing.T, patientID string) *dicom.Dataset {
	t.Helper()
	return &dicom.Dataset{Elements: []*dicom.Element{
		mustElement(t, tag.Tag{Group: 0x0010, Element: 0x0020}, patientID),
	}}
}

// failedUIDList decodes an identifier byte stream and extracts (0008,0058).
func failedUIDList(t *testing.T, identifier []byte) []string {
	t.Helper()
	ds, err := decodeDataset(identifier, true, true)
	if err != nil {
		t.Fatalf("decodeDataset: %v", err)
	}
	for _, elem := range ds.Elements {
		if elem.Tag == tagFailedSOPInstanceUIDList {
			v, ok := elem.Value.GetValue().([]string)
			if !ok {
				t.Fatalf("FailedSOPInstanceUIDList is %T, want []string", elem.Value.GetValue())
			}
			return v
		}
	}
	t.Fatalf("identifier has no FailedSOPInstanceUIDList element")
	return nil
}
