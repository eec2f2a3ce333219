package dimse

import (
	"fmt"
	"io"

	"github.com/medigraph/go-dicomscp/commandset"
	dicomtag "github.com/suyashkumar/dicom/pkg/tag"
)

// The response primitives mirror their request variants. The Identifier (or
// stored DataSet) travels as a separate data payload; the command set only
// signals its presence through (0000,0800). The sub-operation counters of
// C-GET/C-MOVE are pointers so that "absent" is representable: a terminal
// response reports NumberOfRemainingSuboperations as absent, a Pending
// response reports it even when zero.

// CEchoRsp is the C-ECHO response primitive.
type CEchoRsp struct {
	MessageIDBeingRespondedTo MessageID
	AffectedSOPClassUID       string
	Status                    Status
}

func (v *CEchoRsp) Encode(e io.Writer) error {
	b := elementBuffer{}
	b.add(commandset.CommandField, v.CommandField())
	if v.AffectedSOPClassUID != "" {
		b.add(commandset.AffectedSOPClassUID, v.AffectedSOPClassUID)
	}
	b.add(commandset.MessageIDBeingRespondedTo, v.MessageIDBeingRespondedTo)
	b.add(commandset.CommandDataSetType, uint16(CommandDataSetTypeNull))
	b.addStatus(&v.Status)
	if err := b.encode(e); err != nil {
		return fmt.Errorf("CEchoRsp.Encode: %w", err)
	}
	return nil
}

func (v *CEchoRsp) HasData() bool           { return false }
func (v *CEchoRsp) CommandField() uint16    { return CommandFieldCEchoRsp }
func (v *CEchoRsp) GetMessageID() MessageID { return v.MessageIDBeingRespondedTo }
func (v *CEchoRsp) GetStatus() *Status      { return &v.Status }

func (v *CEchoRsp) SetAffectedSOPClassUID(uid string) { v.AffectedSOPClassUID = uid }

func (v *CEchoRsp) String() string {
	return fmt.Sprintf("CEchoRsp{MessageIDBeingRespondedTo:%v Status:%v}", v.MessageIDBeingRespondedTo, v.Status)
}

func (CEchoRsp) decode(d *MessageDecoder) (*CEchoRsp, error) {
	v := &CEchoRsp{}
	var err error
	if v.AffectedSOPClassUID, err = d.GetString(commandset.AffectedSOPClassUID, OptionalElement); err != nil {
		return nil, fmt.Errorf("CEchoRsp.decode: %w", err)
	}
	if v.MessageIDBeingRespondedTo, err = d.GetUInt16(commandset.MessageIDBeingRespondedTo, RequiredElement); err != nil {
		return nil, fmt.Errorf("CEchoRsp.decode: %w", err)
	}
	if _, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("CEchoRsp.decode: %w", err)
	}
	if v.Status, err = d.GetStatus(); err != nil {
		return nil, fmt.Errorf("CEchoRsp.decode: %w", err)
	}
	return v, nil
}

// CStoreRsp is the C-STORE response primitive.
type CStoreRsp struct {
	AffectedSOPClassUID       string
	MessageIDBeingRespondedTo MessageID
	AffectedSOPInstanceUID    string
	Status                    Status
}

func (v *CStoreRsp) Encode(e io.Writer) error {
	b := elementBuffer{}
	b.add(commandset.CommandField, v.CommandField())
	b.add(commandset.AffectedSOPClassUID, v.AffectedSOPClassUID)
	b.add(commandset.MessageIDBeingRespondedTo, v.MessageIDBeingRespondedTo)
	b.add(commandset.CommandDataSetType, uint16(CommandDataSetTypeNull))
	b.add(commandset.AffectedSOPInstanceUID, v.AffectedSOPInstanceUID)
	b.addStatus(&v.Status)
	if err := b.encode(e); err != nil {
		return fmt.Errorf("CStoreRsp.Encode: %w", err)
	}
	return nil
}

func (v *CStoreRsp) HasData() bool           { return false }
func (v *CStoreRsp) CommandField() uint16    { return CommandFieldCStoreRsp }
func (v *CStoreRsp) GetMessageID() MessageID { return v.MessageIDBeingRespondedTo }
func (v *CStoreRsp) GetStatus() *Status      { return &v.Status }

func (v *CStoreRsp) SetAffectedSOPClassUID(uid string)    { v.AffectedSOPClassUID = uid }
func (v *CStoreRsp) SetAffectedSOPInstanceUID(uid string) { v.AffectedSOPInstanceUID = uid }

func (v *CStoreRsp) String() string {
	return fmt.Sprintf("CStoreRsp{AffectedSOPClassUID:%v MessageIDBeingRespondedTo:%v AffectedSOPInstanceUID:%v Status:%v}",
		v.AffectedSOPClassUID, v.MessageIDBeingRespondedTo, v.AffectedSOPInstanceUID, v.Status)
}

func (CStoreRsp) decode(d *MessageDecoder) (*CStoreRsp, error) {
	v := &CStoreRsp{}
	var err error
	if v.AffectedSOPClassUID, err = d.GetString(commandset.AffectedSOPClassUID, RequiredElement); err != nil {
		return nil, fmt.Errorf("CStoreRsp.decode: %w", err)
	}
	if v.MessageIDBeingRespondedTo, err = d.GetUInt16(commandset.MessageIDBeingRespondedTo, RequiredElement); err != nil {
		return nil, fmt.Errorf("CStoreRsp.decode: %w", err)
	}
	if _, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("CStoreRsp.decode: %w", err)
	}
	if v.AffectedSOPInstanceUID, err = d.GetString(commandset.AffectedSOPInstanceUID, RequiredElement); err != nil {
		return nil, fmt.Errorf("CStoreRsp.decode: %w", err)
	}
	if v.Status, err = d.GetStatus(); err != nil {
		return nil, fmt.Errorf("CStoreRsp.decode: %w", err)
	}
	return v, nil
}

// CFindRsp is the C-FIND response primitive. Identifier is non-nil only on
// Pending responses.
type CFindRsp struct {
	AffectedSOPClassUID       string
	MessageIDBeingRespondedTo MessageID
	Identifier                []byte
	Status                    Status
}

func (v *CFindRsp) Encode(e io.Writer) error {
	b := elementBuffer{}
	b.add(commandset.CommandField, v.CommandField())
	b.add(commandset.AffectedSOPClassUID, v.AffectedSOPClassUID)
	b.add(commandset.MessageIDBeingRespondedTo, v.MessageIDBeingRespondedTo)
	b.add(commandset.CommandDataSetType, uint16(v.dataSetType()))
	b.addStatus(&v.Status)
	if err := b.encode(e); err != nil {
		return fmt.Errorf("CFindRsp.Encode: %w", err)
	}
	return nil
}

func (v *CFindRsp) dataSetType() CommandDataSetType {
	if len(v.Identifier) > 0 {
		return CommandDataSetTypeNonNull
	}
	return CommandDataSetTypeNull
}

func (v *CFindRsp) HasData() bool           { return len(v.Identifier) > 0 }
func (v *CFindRsp) CommandField() uint16    { return CommandFieldCFindRsp }
func (v *CFindRsp) GetMessageID() MessageID { return v.MessageIDBeingRespondedTo }
func (v *CFindRsp) GetStatus() *Status      { return &v.Status }

func (v *CFindRsp) SetAffectedSOPClassUID(uid string) { v.AffectedSOPClassUID = uid }

func (v *CFindRsp) String() string {
	return fmt.Sprintf("CFindRsp{AffectedSOPClassUID:%v MessageIDBeingRespondedTo:%v Identifier:%dB Status:%v}",
		v.AffectedSOPClassUID, v.MessageIDBeingRespondedTo, len(v.Identifier), v.Status)
}

func (CFindRsp) decode(d *MessageDecoder) (*CFindRsp, error) {
	v := &CFindRsp{}
	var err error
	if v.AffectedSOPClassUID, err = d.GetString(commandset.AffectedSOPClassUID, RequiredElement); err != nil {
		return nil, fmt.Errorf("CFindRsp.decode: %w", err)
	}
	if v.MessageIDBeingRespondedTo, err = d.GetUInt16(commandset.MessageIDBeingRespondedTo, RequiredElement); err != nil {
		return nil, fmt.Errorf("CFindRsp.decode: %w", err)
	}
	if _, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("CFindRsp.decode: %w", err)
	}
	if v.Status, err = d.GetStatus(); err != nil {
		return nil, fmt.Errorf("CFindRsp.decode: %w", err)
	}
	return v, nil
}

// CGetRsp is the C-GET response primitive.
type CGetRsp struct {
	AffectedSOPClassUID            string
	MessageIDBeingRespondedTo      MessageID
	Identifier                     []byte
	NumberOfRemainingSuboperations *uint16
	NumberOfCompletedSuboperations *uint16
	NumberOfFailedSuboperations    *uint16
	NumberOfWarningSuboperations   *uint16
	Status                         Status
}

func (v *CGetRsp) Encode(e io.Writer) error {
	b := elementBuffer{}
	b.add(commandset.CommandField, v.CommandField())
	b.add(commandset.AffectedSOPClassUID, v.AffectedSOPClassUID)
	b.add(commandset.MessageIDBeingRespondedTo, v.MessageIDBeingRespondedTo)
	b.add(commandset.CommandDataSetType, uint16(v.dataSetType()))
	addCounter(&b, commandset.NumberOfRemainingSuboperations, v.NumberOfRemainingSuboperations)
	addCounter(&b, commandset.NumberOfCompletedSuboperations, v.NumberOfCompletedSuboperations)
	addCounter(&b, commandset.NumberOfFailedSuboperations, v.NumberOfFailedSuboperations)
	addCounter(&b, commandset.NumberOfWarningSuboperations, v.NumberOfWarningSuboperations)
	b.addStatus(&v.Status)
	if err := b.encode(e); err != nil {
		return fmt.Errorf("CGetRsp.Encode: %w", err)
	}
	return nil
}

func (v *CGetRsp) dataSetType() CommandDataSetType {
	if len(v.Identifier) > 0 {
		return CommandDataSetTypeNonNull
	}
	return CommandDataSetTypeNull
}

func (v *CGetRsp) HasData() bool           { return len(v.Identifier) > 0 }
func (v *CGetRsp) CommandField() uint16    { return CommandFieldCGetRsp }
func (v *CGetRsp) GetMessageID() MessageID { return v.MessageIDBeingRespondedTo }
func (v *CGetRsp) GetStatus() *Status      { return &v.Status }

func (v *CGetRsp) SetAffectedSOPClassUID(uid string) { v.AffectedSOPClassUID = uid }

func (v *CGetRsp) String() string {
	return fmt.Sprintf("CGetRsp{AffectedSOPClassUID:%v MessageIDBeingRespondedTo:%v Remaining:%s Completed:%s Failed:%s Warning:%s Status:%v}",
		v.AffectedSOPClassUID, v.MessageIDBeingRespondedTo,
		counterString(v.NumberOfRemainingSuboperations), counterString(v.NumberOfCompletedSuboperations),
		counterString(v.NumberOfFailedSuboperations), counterString(v.NumberOfWarningSuboperations), v.Status)
}

func (CGetRsp) decode(d *MessageDecoder) (*CGetRsp, error) {
	v := &CGetRsp{}
	var err error
	if v.AffectedSOPClassUID, err = d.GetString(commandset.AffectedSOPClassUID, RequiredElement); err != nil {
		return nil, fmt.Errorf("CGetRsp.decode: %w", err)
	}
	if v.MessageIDBeingRespondedTo, err = d.GetUInt16(commandset.MessageIDBeingRespondedTo, RequiredElement); err != nil {
		return nil, fmt.Errorf("CGetRsp.decode: %w", err)
	}
	if _, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("CGetRsp.decode: %w", err)
	}
	if err = decodeCounters(d, &v.NumberOfRemainingSuboperations, &v.NumberOfCompletedSuboperations, &v.NumberOfFailedSuboperations, &v.NumberOfWarningSuboperations); err != nil {
		return nil, fmt.Errorf("CGetRsp.decode: %w", err)
	}
	if v.Status, err = d.GetStatus(); err != nil {
		return nil, fmt.Errorf("CGetRsp.decode: %w", err)
	}
	return v, nil
}

// CMoveRsp is the C-MOVE response primitive.
type CMoveRsp struct {
	AffectedSOPClassUID            string
	MessageIDBeingRespondedTo      MessageID
	Identifier                     []byte
	NumberOfRemainingSuboperations *uint16
	NumberOfCompletedSuboperations *uint16
	NumberOfFailedSuboperations    *uint16
	NumberOfWarningSuboperations   *uint16
	Status                         Status
}

func (v *CMoveRsp) Encode(e io.Writer) error {
	b := elementBuffer{}
	b.add(commandset.CommandField, v.CommandField())
	b.add(commandset.AffectedSOPClassUID, v.AffectedSOPClassUID)
	b.add(commandset.MessageIDBeingRespondedTo, v.MessageIDBeingRespondedTo)
	b.add(commandset.CommandDataSetType, uint16(v.dataSetType()))
	addCounter(&b, commandset.NumberOfRemainingSuboperations, v.NumberOfRemainingSuboperations)
	addCounter(&b, commandset.NumberOfCompletedSuboperations, v.NumberOfCompletedSuboperations)
	addCounter(&b, commandset.NumberOfFailedSuboperations, v.NumberOfFailedSuboperations)
	addCounter(&b, commandset.NumberOfWarningSuboperations, v.NumberOfWarningSuboperations)
	b.addStatus(&v.Status)
	if err := b.encode(e); err != nil {
		return fmt.Errorf("CMoveRsp.Encode: %w", err)
	}
	return nil
}

func (v *CMoveRsp) dataSetType() CommandDataSetType {
	if len(v.Identifier) > 0 {
		return CommandDataSetTypeNonNull
	}
	return CommandDataSetTypeNull
}

func (v *CMoveRsp) HasData() bool           { return len(v.Identifier) > 0 }
func (v *CMoveRsp) CommandField() uint16    { return CommandFieldCMoveRsp }
func (v *CMoveRsp) GetMessageID() MessageID { return v.MessageIDBeingRespondedTo }
func (v *CMoveRsp) GetStatus() *Status      { return &v.Status }

func (v *CMoveRsp) SetAffectedSOPClassUID(uid string) { v.AffectedSOPClassUID = uid }

func (v *CMoveRsp) String() string {
	return fmt.Sprintf("CMoveRsp{AffectedSOPClassUID:%v MessageIDBeingRespondedTo:%v Remaining:%s Completed:%s Failed:%s Warning:%s Status:%v}",
		v.AffectedSOPClassUID, v.MessageIDBeingRespondedTo,
		counterString(v.NumberOfRemainingSuboperations), counterString(v.NumberOfCompletedSuboperations),
		counterString(v.NumberOfFailedSuboperations), counterString(v.NumberOfWarningSuboperations), v.Status)
}

func (CMoveRsp) decode(d *MessageDecoder) (*CMoveRsp, error) {
	v := &CMoveRsp{}
	var err error
	if v.AffectedSOPClassUID, err = d.GetString(commandset.AffectedSOPClassUID, RequiredElement); err != nil {
		return nil, fmt.Errorf("CMoveRsp.decode: %w", err)
	}
	if v.MessageIDBeingRespondedTo, err = d.GetUInt16(commandset.MessageIDBeingRespondedTo, RequiredElement); err != nil {
		return nil, fmt.Errorf("CMoveRsp.decode: %w", err)
	}
	if _, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("CMoveRsp.decode: %w", err)
	}
	if err = decodeCounters(d, &v.NumberOfRemainingSuboperations, &v.NumberOfCompletedSuboperations, &v.NumberOfFailedSuboperations, &v.NumberOfWarningSuboperations); err != nil {
		return nil, fmt.Errorf("CMoveRsp.decode: %w", err)
	}
	if v.Status, err = d.GetStatus(); err != nil {
		return nil, fmt.Errorf("CMoveRsp.decode: %w", err)
	}
	return v, nil
}

func addCounter(b *elementBuffer, t dicomtag.Tag, v *uint16) {
	if v == nil {
		return
	}
	b.add(t, *v)
}

func decodeCounters(d *MessageDecoder, remaining, completed, failed, warning **uint16) error {
	var err error
	if *remaining, err = d.GetUInt16Ptr(commandset.NumberOfRemainingSuboperations); err != nil {
		return err
	}
	if *completed, err = d.GetUInt16Ptr(commandset.NumberOfCompletedSuboperations); err != nil {
		return err
	}
	if *failed, err = d.GetUInt16Ptr(commandset.NumberOfFailedSuboperations); err != nil {
		return err
	}
	if *warning, err = d.GetUInt16Ptr(commandset.NumberOfWarningSuboperations); err != nil {
		return err
	}
	return nil
}

func counterString(v *uint16) string {
	if v == nil {
		return "absent"
	}
	return fmt.Sprintf("%d", *v)
}
