package dicomscp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medigraph/go-dicomscp/dimse"
	"github.com/medigraph/go-dicomscp/events"
)

const patientRootFindUID = "1.2.840.10008.5.1.4.1.2.1.1"

func findRequest() *dimse.CFindRq {
	return &dimse.CFindRq{
		AffectedSOPClassUID: patientRootFindUID,
		MessageID:           21,
		Priority:            dimse.PriorityMedium,
	}
}

// patientIDOf decodes a Pending identifier and extracts (0010,0020).
func patientIDOf(t *testing.T, identifier []byte) string {
	t.Helper()
	ds, err := decodeDataset(identifier, true, true)
	require.NoError(t, err)
	for _, elem := range ds.Elements {
		if elem.Tag.Group == 0x0010 && elem.Tag.Element == 0x0020 {
			s, err := elementString(elem)
			require.NoError(t, err)
			return s
		}
	}
	t.Fatalf("identifier has no PatientID element")
	return ""
}

func TestFindStreaming(t *testing.T) {
	msgr := &fakeMessenger{}
	ds1 := patientDataset(t, "PAT1")
	ds2 := patientDataset(t, "PAT2")
	d := testDispatcher(msgr, nil, map[events.Type]events.Handler{
		events.CFind: func(events.Payload) (interface{}, error) {
			return events.FromSlice(
				events.Result{Status: 0xFF00, Dataset: ds1},
				events.Result{Status: 0xFF00, Dataset: ds2},
			), nil
		},
	})

	require.NoError(t, d.Dispatch(findRequest(), testContext(patientRootFindUID)))
	require.Len(t, msgr.sent, 3)

	first := msgr.sent[0].(*dimse.CFindRsp)
	assert.Equal(t, dimse.StatusCode(0xFF00), first.Status.Status)
	assert.Equal(t, "PAT1", patientIDOf(t, first.Identifier))

	second := msgr.sent[1].(*dimse.CFindRsp)
	assert.Equal(t, dimse.StatusCode(0xFF00), second.Status.Status)
	assert.Equal(t, "PAT2", patientIDOf(t, second.Identifier))

	terminal := msgr.sent[2].(*dimse.CFindRsp)
	assert.Equal(t, dimse.StatusSuccess, terminal.Status.Status)
	assert.Empty(t, terminal.Identifier)

	for _, msg := range msgr.sent {
		assert.Equal(t, uint16(21), msg.(*dimse.CFindRsp).MessageIDBeingRespondedTo)
	}
}

func TestFindCancelTerminates(t *testing.T) {
	msgr := &fakeMessenger{}
	ds1 := patientDataset(t, "PAT1")
	d := testDispatcher(msgr, nil, map[events.Type]events.Handler{
		events.CFind: func(events.Payload) (interface{}, error) {
			return events.FromSlice(
				events.Result{Status: 0xFF00, Dataset: ds1},
				events.Result{Status: 0xFE00},
			), nil
		},
	})

	require.NoError(t, d.Dispatch(findRequest(), testContext(patientRootFindUID)))
	require.Len(t, msgr.sent, 2)

	assert.Equal(t, dimse.StatusCode(0xFF00), msgr.sent[0].(*dimse.CFindRsp).Status.Status)

	terminal := msgr.sent[1].(*dimse.CFindRsp)
	assert.Equal(t, dimse.StatusCode(0xFE00), terminal.Status.Status)
	assert.Empty(t, terminal.Identifier)
}

func TestFindFailureTerminates(t *testing.T) {
	msgr := &fakeMessenger{}
	d := testDispatcher(msgr, nil, map[events.Type]events.Handler{
		events.CFind: func(events.Payload) (interface{}, error) {
			return events.FromSlice(events.Result{Status: 0xA700}), nil
		},
	})

	require.NoError(t, d.Dispatch(findRequest(), testContext(patientRootFindUID)))
	require.Len(t, msgr.sent, 1)
	assert.Equal(t, dimse.StatusCode(0xA700), msgr.sent[0].(*dimse.CFindRsp).Status.Status)
}

func TestFindIdentifierDecodeFailure(t *testing.T) {
	msgr := &fakeMessenger{}
	d := testDispatcher(msgr, nil, map[events.Type]events.Handler{
		events.CFind: func(events.Payload) (interface{}, error) {
			t.Fatal("handler must not run when the identifier cannot be decoded")
			return nil, nil
		},
	})

	req := findRequest()
	req.Identifier = []byte{0xFF, 0x01, 0x02}
	require.NoError(t, d.Dispatch(req, testContext(patientRootFindUID)))
	require.Len(t, msgr.sent, 1)

	rsp := msgr.sent[0].(*dimse.CFindRsp)
	assert.Equal(t, dimse.StatusCode(0xC310), rsp.Status.Status)
	assert.Equal(t, "Unable to decode the dataset", rsp.Status.ErrorComment)
}

func TestFindTriggerFault(t *testing.T) {
	msgr := &fakeMessenger{}
	d := testDispatcher(msgr, nil, map[events.Type]events.Handler{
		events.CFind: func(events.Payload) (interface{}, error) { panic("find handler died") },
	})

	require.NoError(t, d.Dispatch(findRequest(), testContext(patientRootFindUID)))
	require.Len(t, msgr.sent, 1)
	assert.Equal(t, dimse.StatusCode(0xC311), msgr.sent[0].(*dimse.CFindRsp).Status.Status)
}

func TestFindNilProducerIsImmediateSuccess(t *testing.T) {
	msgr := &fakeMessenger{}
	d := testDispatcher(msgr, nil, map[events.Type]events.Handler{
		events.CFind: func(events.Payload) (interface{}, error) { return nil, nil },
	})

	require.NoError(t, d.Dispatch(findRequest(), testContext(patientRootFindUID)))
	require.Len(t, msgr.sent, 1)

	rsp := msgr.sent[0].(*dimse.CFindRsp)
	assert.Equal(t, dimse.StatusSuccess, rsp.Status.Status)
	assert.Empty(t, rsp.Identifier)
}

func TestFindPendingWithoutIdentifierIsEncodeFailure(t *testing.T) {
	msgr := &fakeMessenger{}
	d := testDispatcher(msgr, nil, map[events.Type]events.Handler{
		events.CFind: func(events.Payload) (interface{}, error) {
			return events.FromSlice(events.Result{Status: 0xFF00}), nil
		},
	})

	require.NoError(t, d.Dispatch(findRequest(), testContext(patientRootFindUID)))
	require.Len(t, msgr.sent, 1)

	rsp := msgr.sent[0].(*dimse.CFindRsp)
	assert.Equal(t, dimse.StatusCode(0xC312), rsp.Status.Status)
	assert.Empty(t, rsp.Identifier)
}

func TestFindUnknownStatusSentOnceAsTerminal(t *testing.T) {
	msgr := &fakeMessenger{}
	ds1 := patientDataset(t, "PAT1")
	d := testDispatcher(msgr, nil, map[events.Type]events.Handler{
		events.CFind: func(events.Payload) (interface{}, error) {
			return events.FromSlice(
				events.Result{Status: 0xD000},
				events.Result{Status: 0xFF00, Dataset: ds1},
			), nil
		},
	})

	require.NoError(t, d.Dispatch(findRequest(), testContext(patientRootFindUID)))
	require.Len(t, msgr.sent, 1)
	assert.Equal(t, dimse.StatusCode(0xD000), msgr.sent[0].(*dimse.CFindRsp).Status.Status)
}

func TestFindMidStreamFaultBecomesTerminalFailure(t *testing.T) {
	msgr := &fakeMessenger{}
	ds1 := patientDataset(t, "PAT1")
	calls := 0
	d := testDispatcher(msgr, nil, map[events.Type]events.Handler{
		events.CFind: func(events.Payload) (interface{}, error) {
			return events.ProducerFunc(func() (interface{}, bool) {
				calls++
				if calls == 1 {
					return events.Result{Status: 0xFF00, Dataset: ds1}, true
				}
				panic("matching backend unavailable")
			}), nil
		},
	})

	require.NoError(t, d.Dispatch(findRequest(), testContext(patientRootFindUID)))
	require.Len(t, msgr.sent, 2)
	assert.Equal(t, dimse.StatusCode(0xFF00), msgr.sent[0].(*dimse.CFindRsp).Status.Status)
	assert.Equal(t, dimse.StatusCode(0xC311), msgr.sent[1].(*dimse.CFindRsp).Status.Status)
}

func TestFindHandlerPollsCancelProbe(t *testing.T) {
	msgr := &fakeMessenger{}
	cancels := dimse.NewCancelTracker()
	registry := events.NewRegistry()
	registry.Bind(events.CFind, func(p events.Payload) (interface{}, error) {
		return events.ProducerFunc(func() (interface{}, bool) {
			if p.IsCancelled(21) {
				return events.Result{Status: 0xFE00}, true
			}
			return events.Result{Status: 0xFF00, Dataset: patientDataset(t, "PAT1")}, true
		}), nil
	})
	d := NewDispatcher(msgr, cancels, registry, &fakeAssociation{aeTitle: "TESTSCP"})

	cancels.Put(&dimse.CCancelRq{MessageIDBeingRespondedTo: 21})
	require.NoError(t, d.Dispatch(findRequest(), testContext(patientRootFindUID)))
	require.Len(t, msgr.sent, 1)
	assert.Equal(t, dimse.StatusCode(0xFE00), msgr.sent[0].(*dimse.CFindRsp).Status.Status)
}
