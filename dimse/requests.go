package dimse

import (
	"fmt"
	"io"

	"github.com/medigraph/go-dicomscp/commandset"
)

// CEchoRq is the C-ECHO request primitive. P3.7 9.3.5.1.
type CEchoRq struct {
	AffectedSOPClassUID string
	MessageID           MessageID
	CommandDataSetType  CommandDataSetType
}

func (v *CEchoRq) Encode(e io.Writer) error {
	b := elementBuffer{}
	b.add(commandset.CommandField, v.CommandField())
	b.add(commandset.AffectedSOPClassUID, v.AffectedSOPClassUID)
	b.add(commandset.MessageID, v.MessageID)
	b.add(commandset.CommandDataSetType, uint16(v.CommandDataSetType))
	if err := b.encode(e); err != nil {
		return fmt.Errorf("CEchoRq.Encode: %w", err)
	}
	return nil
}

func (v *CEchoRq) HasData() bool            { return v.CommandDataSetType != CommandDataSetTypeNull }
func (v *CEchoRq) CommandField() uint16     { return CommandFieldCEchoRq }
func (v *CEchoRq) GetMessageID() MessageID  { return v.MessageID }
func (v *CEchoRq) GetStatus() *Status       { return nil }

func (v *CEchoRq) String() string {
	return fmt.Sprintf("CEchoRq{MessageID:%v}", v.MessageID)
}

func (CEchoRq) decode(d *MessageDecoder) (*CEchoRq, error) {
	v := &CEchoRq{}
	var err error
	if v.AffectedSOPClassUID, err = d.GetString(commandset.AffectedSOPClassUID, OptionalElement); err != nil {
		return nil, fmt.Errorf("CEchoRq.decode: %w", err)
	}
	if v.MessageID, err = d.GetUInt16(commandset.MessageID, RequiredElement); err != nil {
		return nil, fmt.Errorf("CEchoRq.decode: %w", err)
	}
	if v.CommandDataSetType, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("CEchoRq.decode: %w", err)
	}
	return v, nil
}

// CStoreRq is the C-STORE request primitive. The DataSet byte stream is
// reassembled by the DIMSE layer and attached here untouched.
type CStoreRq struct {
	AffectedSOPClassUID                  string
	MessageID                            MessageID
	Priority                             uint16
	CommandDataSetType                   CommandDataSetType
	AffectedSOPInstanceUID               string
	MoveOriginatorApplicationEntityTitle string
	MoveOriginatorMessageID              MessageID
	DataSet                              []byte
}

func (v *CStoreRq) Encode(e io.Writer) error {
	b := elementBuffer{}
	b.add(commandset.CommandField, v.CommandField())
	b.add(commandset.AffectedSOPClassUID, v.AffectedSOPClassUID)
	b.add(commandset.MessageID, v.MessageID)
	b.add(commandset.Priority, v.Priority)
	b.add(commandset.CommandDataSetType, uint16(v.CommandDataSetType))
	b.add(commandset.AffectedSOPInstanceUID, v.AffectedSOPInstanceUID)
	if v.MoveOriginatorApplicationEntityTitle != "" {
		b.add(commandset.MoveOriginatorApplicationEntityTitle, v.MoveOriginatorApplicationEntityTitle)
	}
	if v.MoveOriginatorMessageID != 0 {
		b.add(commandset.MoveOriginatorMessageID, v.MoveOriginatorMessageID)
	}
	if err := b.encode(e); err != nil {
		return fmt.Errorf("CStoreRq.Encode: %w", err)
	}
	return nil
}

func (v *CStoreRq) HasData() bool           { return v.CommandDataSetType != CommandDataSetTypeNull }
func (v *CStoreRq) CommandField() uint16    { return CommandFieldCStoreRq }
func (v *CStoreRq) GetMessageID() MessageID { return v.MessageID }
func (v *CStoreRq) GetStatus() *Status      { return nil }

func (v *CStoreRq) String() string {
	return fmt.Sprintf("CStoreRq{AffectedSOPClassUID:%v MessageID:%v Priority:%v AffectedSOPInstanceUID:%v MoveOriginatorApplicationEntityTitle:%v MoveOriginatorMessageID:%v}",
		v.AffectedSOPClassUID, v.MessageID, v.Priority, v.AffectedSOPInstanceUID, v.MoveOriginatorApplicationEntityTitle, v.MoveOriginatorMessageID)
}

func (CStoreRq) decode(d *MessageDecoder) (*CStoreRq, error) {
	v := &CStoreRq{}
	var err error
	if v.AffectedSOPClassUID, err = d.GetString(commandset.AffectedSOPClassUID, RequiredElement); err != nil {
		return nil, fmt.Errorf("CStoreRq.decode: %w", err)
	}
	if v.MessageID, err = d.GetUInt16(commandset.MessageID, RequiredElement); err != nil {
		return nil, fmt.Errorf("CStoreRq.decode: %w", err)
	}
	if v.Priority, err = d.GetUInt16(commandset.Priority, RequiredElement); err != nil {
		return nil, fmt.Errorf("CStoreRq.decode: %w", err)
	}
	if v.CommandDataSetType, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("CStoreRq.decode: %w", err)
	}
	if v.AffectedSOPInstanceUID, err = d.GetString(commandset.AffectedSOPInstanceUID, RequiredElement); err != nil {
		return nil, fmt.Errorf("CStoreRq.decode: %w", err)
	}
	if v.MoveOriginatorApplicationEntityTitle, err = d.GetString(commandset.MoveOriginatorApplicationEntityTitle, OptionalElement); err != nil {
		return nil, fmt.Errorf("CStoreRq.decode: %w", err)
	}
	if v.MoveOriginatorMessageID, err = d.GetUInt16(commandset.MoveOriginatorMessageID, OptionalElement); err != nil {
		return nil, fmt.Errorf("CStoreRq.decode: %w", err)
	}
	return v, nil
}

// CFindRq is the C-FIND request primitive. The Identifier byte stream is the
// query dataset, encoded under the presentation context's transfer syntax.
type CFindRq struct {
	AffectedSOPClassUID string
	MessageID           MessageID
	Priority            uint16
	CommandDataSetType  CommandDataSetType
	Identifier          []byte
}

func (v *CFindRq) Encode(e io.Writer) error {
	b := elementBuffer{}
	b.add(commandset.CommandField, v.CommandField())
	b.add(commandset.AffectedSOPClassUID, v.AffectedSOPClassUID)
	b.add(commandset.MessageID, v.MessageID)
	b.add(commandset.Priority, v.Priority)
	b.add(commandset.CommandDataSetType, uint16(v.CommandDataSetType))
	if err := b.encode(e); err != nil {
		return fmt.Errorf("CFindRq.Encode: %w", err)
	}
	return nil
}

func (v *CFindRq) HasData() bool           { return v.CommandDataSetType != CommandDataSetTypeNull }
func (v *CFindRq) CommandField() uint16    { return CommandFieldCFindRq }
func (v *CFindRq) GetMessageID() MessageID { return v.MessageID }
func (v *CFindRq) GetStatus() *Status      { return nil }

func (v *CFindRq) String() string {
	return fmt.Sprintf("CFindRq{AffectedSOPClassUID:%v MessageID:%v Priority:%v}", v.AffectedSOPClassUID, v.MessageID, v.Priority)
}

func (CFindRq) decode(d *MessageDecoder) (*CFindRq, error) {
	v := &CFindRq{}
	var err error
	if v.AffectedSOPClassUID, err = d.GetString(commandset.AffectedSOPClassUID, RequiredElement); err != nil {
		return nil, fmt.Errorf("CFindRq.decode: %w", err)
	}
	if v.MessageID, err = d.GetUInt16(commandset.MessageID, RequiredElement); err != nil {
		return nil, fmt.Errorf("CFindRq.decode: %w", err)
	}
	if v.Priority, err = d.GetUInt16(commandset.Priority, RequiredElement); err != nil {
		return nil, fmt.Errorf("CFindRq.decode: %w", err)
	}
	if v.CommandDataSetType, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("CFindRq.decode: %w", err)
	}
	return v, nil
}

// CGetRq is the C-GET request primitive.
type CGetRq struct {
	AffectedSOPClassUID string
	MessageID           MessageID
	Priority            uint16
	CommandDataSetType  CommandDataSetType
	Identifier          []byte
}

func (v *CGetRq) Encode(e io.Writer) error {
	b := elementBuffer{}
	b.add(commandset.CommandField, v.CommandField())
	b.add(commandset.AffectedSOPClassUID, v.AffectedSOPClassUID)
	b.add(commandset.MessageID, v.MessageID)
	b.add(commandset.Priority, v.Priority)
	b.add(commandset.CommandDataSetType, uint16(v.CommandDataSetType))
	if err := b.encode(e); err != nil {
		return fmt.Errorf("CGetRq.Encode: %w", err)
	}
	return nil
}

func (v *CGetRq) HasData() bool           { return v.CommandDataSetType != CommandDataSetTypeNull }
func (v *CGetRq) CommandField() uint16    { return CommandFieldCGetRq }
func (v *CGetRq) GetMessageID() MessageID { return v.MessageID }
func (v *CGetRq) GetStatus() *Status      { return nil }

func (v *CGetRq) String() string {
	return fmt.Sprintf("CGetRq{AffectedSOPClassUID:%v MessageID:%v Priority:%v}", v.AffectedSOPClassUID, v.MessageID, v.Priority)
}

func (CGetRq) decode(d *MessageDecoder) (*CGetRq, error) {
	v := &CGetRq{}
	var err error
	if v.AffectedSOPClassUID, err = d.GetString(commandset.AffectedSOPClassUID, RequiredElement); err != nil {
		return nil, fmt.Errorf("CGetRq.decode: %w", err)
	}
	if v.MessageID, err = d.GetUInt16(commandset.MessageID, RequiredElement); err != nil {
		return nil, fmt.Errorf("CGetRq.decode: %w", err)
	}
	if v.Priority, err = d.GetUInt16(commandset.Priority, RequiredElement); err != nil {
		return nil, fmt.Errorf("CGetRq.decode: %w", err)
	}
	if v.CommandDataSetType, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("CGetRq.decode: %w", err)
	}
	return v, nil
}

// CMoveRq is the C-MOVE request primitive. MoveDestination carries the AE
// title of the receiving AE, ASCII, space-padded to 16 bytes.
type CMoveRq struct {
	AffectedSOPClassUID string
	MessageID           MessageID
	Priority            uint16
	MoveDestination     string
	CommandDataSetType  CommandDataSetType
	Identifier          []byte
}

func (v *CMoveRq) Encode(e io.Writer) error {
	b := elementBuffer{}
	b.add(commandset.CommandField, v.CommandField())
	b.add(commandset.AffectedSOPClassUID, v.AffectedSOPClassUID)
	b.add(commandset.MessageID, v.MessageID)
	b.add(commandset.Priority, v.Priority)
	b.add(commandset.MoveDestination, v.MoveDestination)
	b.add(commandset.CommandDataSetType, uint16(v.CommandDataSetType))
	if err := b.encode(e); err != nil {
		return fmt.Errorf("CMoveRq.Encode: %w", err)
	}
	return nil
}

func (v *CMoveRq) HasData() bool           { return v.CommandDataSetType != CommandDataSetTypeNull }
func (v *CMoveRq) CommandField() uint16    { return CommandFieldCMoveRq }
func (v *CMoveRq) GetMessageID() MessageID { return v.MessageID }
func (v *CMoveRq) GetStatus() *Status      { return nil }

func (v *CMoveRq) String() string {
	return fmt.Sprintf("CMoveRq{AffectedSOPClassUID:%v MessageID:%v Priority:%v MoveDestination:%q}",
		v.AffectedSOPClassUID, v.MessageID, v.Priority, v.MoveDestination)
}

func (CMoveRq) decode(d *MessageDecoder) (*CMoveRq, error) {
	v := &CMoveRq{}
	var err error
	if v.AffectedSOPClassUID, err = d.GetString(commandset.AffectedSOPClassUID, RequiredElement); err != nil {
		return nil, fmt.Errorf("CMoveRq.decode: %w", err)
	}
	if v.MessageID, err = d.GetUInt16(commandset.MessageID, RequiredElement); err != nil {
		return nil, fmt.Errorf("CMoveRq.decode: %w", err)
	}
	if v.Priority, err = d.GetUInt16(commandset.Priority, RequiredElement); err != nil {
		return nil, fmt.Errorf("CMoveRq.decode: %w", err)
	}
	if v.MoveDestination, err = d.GetString(commandset.MoveDestination, RequiredElement); err != nil {
		return nil, fmt.Errorf("CMoveRq.decode: %w", err)
	}
	if v.CommandDataSetType, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("CMoveRq.decode: %w", err)
	}
	return v, nil
}

// CCancelRq is the C-CANCEL request primitive. It carries no status and no
// data; the DIMSE layer records it against the message ID it responds to.
type CCancelRq struct {
	MessageIDBeingRespondedTo MessageID
	CommandDataSetType        CommandDataSetType
}

func (v *CCancelRq) Encode(e io.Writer) error {
	b := elementBuffer{}
	b.add(commandset.CommandField, v.CommandField())
	b.add(commandset.MessageIDBeingRespondedTo, v.MessageIDBeingRespondedTo)
	b.add(commandset.CommandDataSetType, uint16(v.CommandDataSetType))
	if err := b.encode(e); err != nil {
		return fmt.Errorf("CCancelRq.Encode: %w", err)
	}
	return nil
}

func (v *CCancelRq) HasData() bool           { return v.CommandDataSetType != CommandDataSetTypeNull }
func (v *CCancelRq) CommandField() uint16    { return CommandFieldCCancelRq }
func (v *CCancelRq) GetMessageID() MessageID { return v.MessageIDBeingRespondedTo }
func (v *CCancelRq) GetStatus() *Status      { return nil }

func (v *CCancelRq) String() string {
	return fmt.Sprintf("CCancelRq{MessageIDBeingRespondedTo:%v}", v.MessageIDBeingRespondedTo)
}

func (CCancelRq) decode(d *MessageDecoder) (*CCancelRq, error) {
	v := &CCancelRq{}
	var err error
	if v.MessageIDBeingRespondedTo, err = d.GetUInt16(commandset.MessageIDBeingRespondedTo, RequiredElement); err != nil {
		return nil, fmt.Errorf("CCancelRq.decode: %w", err)
	}
	if v.CommandDataSetType, err = d.GetCommandDataSetType(); err != nil {
		return nil, fmt.Errorf("CCancelRq.decode: %w", err)
	}
	return v, nil
}
