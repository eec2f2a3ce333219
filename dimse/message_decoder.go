package dimse

import (
	"fmt"

	"github.com/medigraph/go-dicomscp/commandset"
	"github.com/suyashkumar/dicom"
	dicomtag "github.com/suyashkumar/dicom/pkg/tag"
)

// MessageDecoder is a helper for extracting values from a command set's
// element list.
type MessageDecoder struct {
	elements map[dicomtag.Tag]*dicom.Element
}

type isOptionalElement int

const (
	RequiredElement isOptionalElement = iota
	OptionalElement
)

type CommandDataSetType uint16

const (
	// CommandDataSetTypeNull indicates that the DIMSE message has no data
	// payload, when set in (0000,0800). Any other value indicates the
	// existence of a payload.
	CommandDataSetTypeNull CommandDataSetType = 0x101

	// CommandDataSetTypeNonNull indicates that the DIMSE message has a data
	// payload, when set in (0000,0800).
	CommandDataSetTypeNonNull CommandDataSetType = 1
)

func (d *MessageDecoder) Decode(commandField uint16) (Message, error) {
	switch commandField {
	case CommandFieldCEchoRq:
		return CEchoRq{}.decode(d)
	case CommandFieldCEchoRsp:
		return CEchoRsp{}.decode(d)
	case CommandFieldCStoreRq:
		return CStoreRq{}.decode(d)
	case CommandFieldCStoreRsp:
		return CStoreRsp{}.decode(d)
	case CommandFieldCFindRq:
		return CFindRq{}.decode(d)
	case CommandFieldCFindRsp:
		return CFindRsp{}.decode(d)
	case CommandFieldCGetRq:
		return CGetRq{}.decode(d)
	case CommandFieldCGetRsp:
		return CGetRsp{}.decode(d)
	case CommandFieldCMoveRq:
		return CMoveRq{}.decode(d)
	case CommandFieldCMoveRsp:
		return CMoveRsp{}.decode(d)
	case CommandFieldCCancelRq:
		return CCancelRq{}.decode(d)
	default:
		return nil, fmt.Errorf("unknown DIMSE command 0x%x", commandField)
	}
}

// UnparsedElements returns the elements not consumed by the decode so far.
func (d *MessageDecoder) UnparsedElements() []*dicom.Element {
	elems := make([]*dicom.Element, 0, len(d.elements))
	for _, elem := range d.elements {
		elems = append(elems, elem)
	}
	return elems
}

func (d *MessageDecoder) GetStatus() (s Status, err error) {
	statusCode, err := d.GetUInt16(commandset.Status, RequiredElement)
	if err != nil {
		return s, fmt.Errorf("GetStatus: failed to get status code: %w", err)
	}
	s.Status = StatusCode(statusCode)
	s.ErrorComment, err = d.GetString(commandset.ErrorComment, OptionalElement)
	if err != nil {
		return s, fmt.Errorf("GetStatus: failed to get error comment: %w", err)
	}
	s.OffendingElement, err = d.GetInts(commandset.OffendingElement)
	if err != nil {
		return s, fmt.Errorf("GetStatus: failed to get offending element list: %w", err)
	}
	return s, nil
}

func (d *MessageDecoder) GetCommandDataSetType() (CommandDataSetType, error) {
	cmdDataSetType, err := d.GetUInt16(commandset.CommandDataSetType, RequiredElement)
	if err != nil {
		return CommandDataSetTypeNull, fmt.Errorf("GetCommandDataSetType: failed to get command data set type: %w", err)
	}
	return CommandDataSetType(cmdDataSetType), nil
}

func (d *MessageDecoder) GetString(tag dicomtag.Tag, optional isOptionalElement) (string, error) {
	elem := d.elements[tag]
	if elem == nil {
		if optional == RequiredElement {
			return "", fmt.Errorf("GetString: tag %s not found", tag.String())
		}
		return "", nil
	}
	v, err := stringValue(elem)
	if err != nil {
		return "", fmt.Errorf("GetString: %w", err)
	}
	delete(d.elements, tag)
	return v, nil
}

// GetUInt16 finds the element with "tag" and extracts a uint16 from it.
func (d *MessageDecoder) GetUInt16(tag dicomtag.Tag, optional isOptionalElement) (uint16, error) {
	elem := d.elements[tag]
	if elem == nil {
		if optional == RequiredElement {
			return 0, fmt.Errorf("GetUInt16: tag %s not found", tag.String())
		}
		return 0, nil
	}
	v, err := uint16Value(elem)
	if err != nil {
		return 0, fmt.Errorf("GetUInt16: %w", err)
	}
	delete(d.elements, tag)
	return v, nil
}

// GetUInt16Ptr extracts an optional uint16, distinguishing an absent element
// (nil) from a present zero. Used for the sub-operation counters.
func (d *MessageDecoder) GetUInt16Ptr(tag dicomtag.Tag) (*uint16, error) {
	elem := d.elements[tag]
	if elem == nil {
		return nil, nil
	}
	v, err := uint16Value(elem)
	if err != nil {
		return nil, fmt.Errorf("GetUInt16Ptr: %w", err)
	}
	delete(d.elements, tag)
	return &v, nil
}

// GetInts extracts an optional multi-valued integer element.
func (d *MessageDecoder) GetInts(tag dicomtag.Tag) ([]int, error) {
	elem := d.elements[tag]
	if elem == nil {
		return nil, nil
	}
	if elem.Value == nil || elem.Value.GetValue() == nil {
		return nil, fmt.Errorf("GetInts: tag %s has no value", tag.String())
	}
	v, ok := elem.Value.GetValue().([]int)
	if !ok {
		return nil, fmt.Errorf("GetInts: failed to convert tag %s to []int", tag.String())
	}
	delete(d.elements, tag)
	return v, nil
}

func stringValue(elem *dicom.Element) (string, error) {
	if elem.Value == nil {
		return "", fmt.Errorf("tag %s has no value", elem.Tag.String())
	}
	rawValue := elem.Value.GetValue()
	if rawValue == nil {
		return "", fmt.Errorf("tag %s has a nil value", elem.Tag.String())
	}
	v, ok := rawValue.([]string)
	if !ok {
		return "", fmt.Errorf("failed to convert tag %s to []string, got %d", elem.Tag.String(), elem.Value.ValueType())
	}
	if len(v) == 0 {
		return "", nil
	}
	return v[0], nil
}

func uint16Value(elem *dicom.Element) (uint16, error) {
	if elem.Value == nil {
		return 0, fmt.Errorf("tag %s has no value", elem.Tag.String())
	}
	if elem.Value.ValueType() != dicom.Ints {
		return 0, fmt.Errorf("element %s is not an int, got %v", elem.Tag.String(), elem.Value.ValueType())
	}
	rawValue := elem.Value.GetValue()
	if rawValue == nil {
		return 0, fmt.Errorf("tag %s has a nil value", elem.Tag.String())
	}
	v, ok := rawValue.([]int)
	if !ok {
		return 0, fmt.Errorf("failed to convert tag %s to []int", elem.Tag.String())
	}
	if len(v) == 0 {
		return 0, nil
	}
	if v[0] < 0 || v[0] > 65535 {
		return 0, fmt.Errorf("value %v is out of range for uint16", v)
	}
	return uint16(v[0]), nil
}
