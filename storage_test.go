package dicomscp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suyashkumar/dicom"

	"github.com/medigraph/go-dicomscp/commandset"
	"github.com/medigraph/go-dicomscp/dimse"
	"github.com/medigraph/go-dicomscp/events"
)

const ctImageStorageUID = "1.2.840.10008.5.1.4.1.1.2"

func storeRequest() *dimse.CStoreRq {
	return &dimse.CStoreRq{
		AffectedSOPClassUID:    ctImageStorageUID,
		MessageID:              11,
		Priority:               dimse.PriorityMedium,
		AffectedSOPInstanceUID: "1.2.3.4.5",
		DataSet:                []byte{0x01, 0x02},
	}
}

func TestStoreSuccess(t *testing.T) {
	msgr := &fakeMessenger{}
	d := testDispatcher(msgr, nil, map[events.Type]events.Handler{
		events.CStore: func(p events.Payload) (interface{}, error) {
			req := p.Request.(*dimse.CStoreRq)
			assert.Equal(t, "1.2.3.4.5", req.AffectedSOPInstanceUID)
			return 0x0000, nil
		},
	})

	require.NoError(t, d.Dispatch(storeRequest(), testContext(ctImageStorageUID)))
	require.Len(t, msgr.sent, 1)

	rsp := msgr.sent[0].(*dimse.CStoreRsp)
	assert.Equal(t, uint16(11), rsp.MessageIDBeingRespondedTo)
	assert.Equal(t, ctImageStorageUID, rsp.AffectedSOPClassUID)
	assert.Equal(t, "1.2.3.4.5", rsp.AffectedSOPInstanceUID)
	assert.Equal(t, dimse.StatusSuccess, rsp.Status.Status)
}

func TestStoreHandlerFault(t *testing.T) {
	msgr := &fakeMessenger{}
	d := testDispatcher(msgr, nil, map[events.Type]events.Handler{
		events.CStore: func(events.Payload) (interface{}, error) { panic("store handler died") },
	})

	require.NoError(t, d.Dispatch(storeRequest(), testContext(ctImageStorageUID)))
	require.Len(t, msgr.sent, 1)

	rsp := msgr.sent[0].(*dimse.CStoreRsp)
	assert.Equal(t, dimse.StatusCode(0xC211), rsp.Status.Status)
	assert.Equal(t, ctImageStorageUID, rsp.AffectedSOPClassUID)
	assert.Equal(t, "1.2.3.4.5", rsp.AffectedSOPInstanceUID)
}

func TestStoreWarningPassesThrough(t *testing.T) {
	for _, code := range []int{0xB000, 0xB006, 0xB007} {
		msgr := &fakeMessenger{}
		d := testDispatcher(msgr, nil, map[events.Type]events.Handler{
			events.CStore: func(events.Payload) (interface{}, error) { return code, nil },
		})

		require.NoError(t, d.Dispatch(storeRequest(), testContext(ctImageStorageUID)))
		require.Len(t, msgr.sent, 1)
		assert.Equal(t, dimse.StatusCode(code), msgr.sent[0].(*dimse.CStoreRsp).Status.Status)
	}
}

func TestStoreStatusDatasetWithErrorComment(t *testing.T) {
	msgr := &fakeMessenger{}
	status := &dicom.Dataset{Elements: []*dicom.Element{
		mustElement(t, commandset.Status, 0xA900),
		mustElement(t, commandset.ErrorComment, "SOP class mismatch"),
	}}
	d := testDispatcher(msgr, nil, map[events.Type]events.Handler{
		events.CStore: func(events.Payload) (interface{}, error) { return status, nil },
	})

	require.NoError(t, d.Dispatch(storeRequest(), testContext(ctImageStorageUID)))
	require.Len(t, msgr.sent, 1)

	rsp := msgr.sent[0].(*dimse.CStoreRsp)
	assert.Equal(t, dimse.StatusCode(0xA900), rsp.Status.Status)
	assert.Equal(t, "SOP class mismatch", rsp.Status.ErrorComment)
}

func TestStoreDatasetWithoutStatusElement(t *testing.T) {
	msgr := &fakeMessenger{}
	d := testDispatcher(msgr, nil, map[events.Type]events.Handler{
		events.CStore: func(events.Payload) (interface{}, error) { return &dicom.Dataset{}, nil },
	})

	require.NoError(t, d.Dispatch(storeRequest(), testContext(ctImageStorageUID)))
	require.Len(t, msgr.sent, 1)
	assert.Equal(t, dimse.StatusCode(0xC001), msgr.sent[0].(*dimse.CStoreRsp).Status.Status)
}
