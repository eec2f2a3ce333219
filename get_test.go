package dicomscp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/medigraph/go-dicomscp/dimse"
	"github.com/medigraph/go-dicomscp/events"
)

func providerURLTag() tag.Tag { return tag.Tag{Group: 0x0028, Element: 0x7FE0} }

const (
	patientRootGetUID = "1.2.840.10008.5.1.4.1.2.1.3"
	withoutBulkGetUID = "1.2.840.10008.5.1.4.1.2.5.3"
)

func getRequest() *dimse.CGetRq {
	return &dimse.CGetRq{
		AffectedSOPClassUID: patientRootGetUID,
		MessageID:           5,
		Priority:            dimse.PriorityMedium,
	}
}

func getCounters(t *testing.T, rsp *dimse.CGetRsp) (remaining *uint16, failed, warning, completed uint16) {
	t.Helper()
	require.NotNil(t, rsp.NumberOfFailedSuboperations)
	require.NotNil(t, rsp.NumberOfWarningSuboperations)
	require.NotNil(t, rsp.NumberOfCompletedSuboperations)
	return rsp.NumberOfRemainingSuboperations, *rsp.NumberOfFailedSuboperations, *rsp.NumberOfWarningSuboperations, *rsp.NumberOfCompletedSuboperations
}

func TestGetMixedOutcomes(t *testing.T) {
	msgr := &fakeMessenger{}
	assoc := &fakeAssociation{
		aeTitle: "TESTSCP",
		storeFn: func(ds *dicom.Dataset, msgID uint16) (dimse.Status, error) {
			uid, _ := sopInstanceUID(ds)
			switch uid {
			case "A":
				return dimse.Success, nil
			case "B":
				return dimse.Status{Status: dimse.StatusCode(0xB000)}, nil
			default:
				return dimse.Status{Status: dimse.StatusCode(0xA700)}, nil
			}
		},
	}
	d := testDispatcher(msgr, assoc, map[events.Type]events.Handler{
		events.CGet: func(events.Payload) (interface{}, error) {
			return events.FromSlice(
				3,
				events.Result{Status: 0xFF00, Dataset: instanceDataset(t, "A")},
				events.Result{Status: 0xFF00, Dataset: instanceDataset(t, "B")},
				events.Result{Status: 0xFF00, Dataset: instanceDataset(t, "C")},
			), nil
		},
	})

	require.NoError(t, d.Dispatch(getRequest(), testContext(patientRootGetUID)))
	require.Len(t, msgr.sent, 4)

	wantPending := []struct {
		remaining, failed, warning, completed uint16
	}{
		{2, 0, 0, 1},
		{1, 0, 1, 1},
		{0, 1, 1, 1},
	}
	for i, want := range wantPending {
		rsp := msgr.sent[i].(*dimse.CGetRsp)
		assert.Equal(t, dimse.StatusCode(0xFF00), rsp.Status.Status, "response %d", i)
		remaining, failed, warning, completed := getCounters(t, rsp)
		require.NotNil(t, remaining, "response %d", i)
		assert.Equal(t, want.remaining, *remaining, "response %d", i)
		assert.Equal(t, want.failed, failed, "response %d", i)
		assert.Equal(t, want.warning, warning, "response %d", i)
		assert.Equal(t, want.completed, completed, "response %d", i)
		assert.Empty(t, rsp.Identifier, "response %d", i)
	}

	terminal := msgr.sent[3].(*dimse.CGetRsp)
	assert.Equal(t, dimse.StatusCode(0xB000), terminal.Status.Status)
	remaining, failed, warning, completed := getCounters(t, terminal)
	assert.Nil(t, remaining)
	assert.Equal(t, uint16(1), failed)
	assert.Equal(t, uint16(1), warning)
	assert.Equal(t, uint16(1), completed)
	assert.Equal(t, []string{"B", "C"}, failedUIDList(t, terminal.Identifier))

	// Sub-operation message IDs are derived from the request's.
	require.Len(t, assoc.storeCalls, 3)
	for i, call := range assoc.storeCalls {
		assert.Equal(t, uint16(5+i+1), call.msgID)
	}
}

func TestGetAllSuccessfulTerminatesWithPureSuccess(t *testing.T) {
	msgr := &fakeMessenger{}
	assoc := &fakeAssociation{aeTitle: "TESTSCP"}
	d := testDispatcher(msgr, assoc, map[events.Type]events.Handler{
		events.CGet: func(events.Payload) (interface{}, error) {
			return events.FromSlice(
				1,
				events.Result{Status: 0xFF00, Dataset: instanceDataset(t, "A")},
			), nil
		},
	})

	require.NoError(t, d.Dispatch(getRequest(), testContext(patientRootGetUID)))
	require.Len(t, msgr.sent, 2)

	terminal := msgr.sent[1].(*dimse.CGetRsp)
	assert.Equal(t, dimse.StatusSuccess, terminal.Status.Status)
	assert.Empty(t, terminal.Identifier)
	assert.Nil(t, terminal.NumberOfRemainingSuboperations)
}

func TestGetTriggerFault(t *testing.T) {
	msgr := &fakeMessenger{}
	d := testDispatcher(msgr, nil, map[events.Type]events.Handler{
		events.CGet: func(events.Payload) (interface{}, error) { panic("get handler died") },
	})

	require.NoError(t, d.Dispatch(getRequest(), testContext(patientRootGetUID)))
	require.Len(t, msgr.sent, 1)
	assert.Equal(t, dimse.StatusCode(0xC411), msgr.sent[0].(*dimse.CGetRsp).Status.Status)
}

func TestGetMissingSubOperationCount(t *testing.T) {
	cases := map[string]events.Handler{
		"empty producer": func(events.Payload) (interface{}, error) {
			return events.FromSlice(), nil
		},
		"non-integer first yield": func(events.Payload) (interface{}, error) {
			return events.FromSlice("three"), nil
		},
		"nil producer": func(events.Payload) (interface{}, error) {
			return nil, nil
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			msgr := &fakeMessenger{}
			d := testDispatcher(msgr, nil, map[events.Type]events.Handler{events.CGet: handler})
			require.NoError(t, d.Dispatch(getRequest(), testContext(patientRootGetUID)))
			require.Len(t, msgr.sent, 1)
			assert.Equal(t, dimse.StatusCode(0xC413), msgr.sent[0].(*dimse.CGetRsp).Status.Status)
		})
	}
}

func TestGetInvalidPendingDatasetCountsAsFailure(t *testing.T) {
	msgr := &fakeMessenger{}
	assoc := &fakeAssociation{aeTitle: "TESTSCP"}
	d := testDispatcher(msgr, assoc, map[events.Type]events.Handler{
		events.CGet: func(events.Payload) (interface{}, error) {
			return events.FromSlice(
				2,
				events.Result{Status: 0xFF00, Dataset: "not a dataset"},
				events.Result{Status: 0xFF00, Dataset: instanceDataset(t, "A")},
			), nil
		},
	})

	require.NoError(t, d.Dispatch(getRequest(), testContext(patientRootGetUID)))
	require.Len(t, msgr.sent, 3)

	// The invalid dataset emits a Pending with the failure counted but no
	// sub-operation attempted.
	first := msgr.sent[0].(*dimse.CGetRsp)
	assert.Equal(t, dimse.StatusCode(0xFF00), first.Status.Status)
	remaining, failed, _, _ := getCounters(t, first)
	require.NotNil(t, remaining)
	assert.Equal(t, uint16(2), *remaining)
	assert.Equal(t, uint16(1), failed)

	// The terminal is a Warning with the empty-UID failure entry.
	terminal := msgr.sent[2].(*dimse.CGetRsp)
	assert.Equal(t, dimse.StatusCode(0xB000), terminal.Status.Status)
	assert.Equal(t, []string{""}, failedUIDList(t, terminal.Identifier))
	require.Len(t, assoc.storeCalls, 1)
}

func TestGetCancelMidStream(t *testing.T) {
	msgr := &fakeMessenger{}
	assoc := &fakeAssociation{
		aeTitle: "TESTSCP",
		storeFn: func(*dicom.Dataset, uint16) (dimse.Status, error) {
			return dimse.Status{Status: dimse.StatusCode(0xA700)}, nil
		},
	}
	d := testDispatcher(msgr, assoc, map[events.Type]events.Handler{
		events.CGet: func(events.Payload) (interface{}, error) {
			return events.FromSlice(
				2,
				events.Result{Status: 0xFF00, Dataset: instanceDataset(t, "A")},
				events.Result{Status: 0xFE00},
			), nil
		},
	})

	require.NoError(t, d.Dispatch(getRequest(), testContext(patientRootGetUID)))
	require.Len(t, msgr.sent, 2)

	terminal := msgr.sent[1].(*dimse.CGetRsp)
	assert.Equal(t, dimse.StatusCode(0xFE00), terminal.Status.Status)
	// Cancel reports all four counters, remaining included.
	remaining, failed, warning, completed := getCounters(t, terminal)
	require.NotNil(t, remaining)
	assert.Equal(t, uint16(1), *remaining)
	assert.Equal(t, uint16(1), failed)
	assert.Equal(t, uint16(0), warning)
	assert.Equal(t, uint16(0), completed)
	// The synthesised identifier carries the failed-instance list.
	assert.Equal(t, []string{"A"}, failedUIDList(t, terminal.Identifier))
}

func TestGetFailureTerminalFoldsRemainingIntoFailed(t *testing.T) {
	msgr := &fakeMessenger{}
	assoc := &fakeAssociation{aeTitle: "TESTSCP"}
	d := testDispatcher(msgr, assoc, map[events.Type]events.Handler{
		events.CGet: func(events.Payload) (interface{}, error) {
			return events.FromSlice(
				3,
				events.Result{Status: 0xFF00, Dataset: instanceDataset(t, "A")},
				events.Result{Status: 0xA701},
			), nil
		},
	})

	require.NoError(t, d.Dispatch(getRequest(), testContext(patientRootGetUID)))
	require.Len(t, msgr.sent, 2)

	terminal := msgr.sent[1].(*dimse.CGetRsp)
	assert.Equal(t, dimse.StatusCode(0xA701), terminal.Status.Status)
	remaining, failed, _, completed := getCounters(t, terminal)
	assert.Nil(t, remaining)
	// The two never-attempted sub-operations count as failed.
	assert.Equal(t, uint16(2), failed)
	assert.Equal(t, uint16(1), completed)
}

func TestGetExtraYieldsAfterCompletionAreIgnored(t *testing.T) {
	msgr := &fakeMessenger{}
	assoc := &fakeAssociation{aeTitle: "TESTSCP"}
	d := testDispatcher(msgr, assoc, map[events.Type]events.Handler{
		events.CGet: func(events.Payload) (interface{}, error) {
			return events.FromSlice(
				1,
				events.Result{Status: 0xFF00, Dataset: instanceDataset(t, "A")},
				events.Result{Status: 0xFF00, Dataset: instanceDataset(t, "B")},
				events.Result{Status: 0xFF00, Dataset: instanceDataset(t, "C")},
			), nil
		},
	})

	require.NoError(t, d.Dispatch(getRequest(), testContext(patientRootGetUID)))
	// One Pending for A, then the terminal; B and C never reach a
	// sub-operation and produce no extra responses.
	require.Len(t, msgr.sent, 2)
	require.Len(t, assoc.storeCalls, 1)
	assert.Equal(t, dimse.StatusSuccess, msgr.sent[1].(*dimse.CGetRsp).Status.Status)
}

func TestGetSubOperationTransportErrorCountsAsFailure(t *testing.T) {
	msgr := &fakeMessenger{}
	assoc := &fakeAssociation{
		aeTitle: "TESTSCP",
		storeFn: func(*dicom.Dataset, uint16) (dimse.Status, error) {
			return dimse.Status{}, errors.New("peer aborted")
		},
	}
	d := testDispatcher(msgr, assoc, map[events.Type]events.Handler{
		events.CGet: func(events.Payload) (interface{}, error) {
			return events.FromSlice(
				1,
				events.Result{Status: 0xFF00, Dataset: instanceDataset(t, "A")},
			), nil
		},
	})

	require.NoError(t, d.Dispatch(getRequest(), testContext(patientRootGetUID)))
	require.Len(t, msgr.sent, 2)

	terminal := msgr.sent[1].(*dimse.CGetRsp)
	assert.Equal(t, dimse.StatusCode(0xB000), terminal.Status.Status)
	assert.Equal(t, []string{"A"}, failedUIDList(t, terminal.Identifier))
}

func TestGetMessageIDWrapsAt65536(t *testing.T) {
	msgr := &fakeMessenger{}
	assoc := &fakeAssociation{aeTitle: "TESTSCP"}
	d := testDispatcher(msgr, assoc, map[events.Type]events.Handler{
		events.CGet: func(events.Payload) (interface{}, error) {
			return events.FromSlice(
				2,
				events.Result{Status: 0xFF00, Dataset: instanceDataset(t, "A")},
				events.Result{Status: 0xFF00, Dataset: instanceDataset(t, "B")},
			), nil
		},
	})

	req := getRequest()
	req.MessageID = 65535
	require.NoError(t, d.Dispatch(req, testContext(patientRootGetUID)))

	require.Len(t, assoc.storeCalls, 2)
	assert.Equal(t, uint16(0), assoc.storeCalls[0].msgID)
	assert.Equal(t, uint16(1), assoc.storeCalls[1].msgID)
}

func TestGetStripsBulkDataForCompositeWithoutBulkData(t *testing.T) {
	msgr := &fakeMessenger{}
	var stored *dicom.Dataset
	assoc := &fakeAssociation{
		aeTitle: "TESTSCP",
		storeFn: func(ds *dicom.Dataset, msgID uint16) (dimse.Status, error) {
			stored = ds
			return dimse.Success, nil
		},
	}
	ds := &dicom.Dataset{Elements: []*dicom.Element{
		mustElement(t, tagSOPInstanceUID, "A"),
		mustElement(t, tagFailedSOPInstanceUIDList, []string{"ignored"}),
	}}
	// PixelData needs a pixel-data value; a simple string element at the
	// provider-URL tag keeps the fixture light.
	ds.Elements = append(ds.Elements, mustElement(t, providerURLTag(), "http://bulk.example.com/pd"))

	d := testDispatcher(msgr, assoc, map[events.Type]events.Handler{
		events.CGet: func(events.Payload) (interface{}, error) {
			return events.FromSlice(1, events.Result{Status: 0xFF00, Dataset: ds}), nil
		},
	})

	req := getRequest()
	req.AffectedSOPClassUID = withoutBulkGetUID
	require.NoError(t, d.Dispatch(req, testContext(withoutBulkGetUID)))

	require.NotNil(t, stored)
	for _, elem := range stored.Elements {
		assert.False(t, elem.Tag.Group == 0x0028 && elem.Tag.Element == 0x7FE0,
			"PixelDataProviderURL must be stripped")
	}
}
