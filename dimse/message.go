// Package dimse implements the typed DIMSE message primitives exchanged by
// the service-class dispatch core, along with their implicit-VR little-endian
// command-set encoding. See P3.7 6.3.1 and Annex E.
package dimse

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/medigraph/go-dicomscp/commandset"
	"github.com/suyashkumar/dicom"
	dicomtag "github.com/suyashkumar/dicom/pkg/tag"
)

// Message defines the common interface for all DIMSE message types.
type Message interface {
	fmt.Stringer // Print human-readable description for debugging.
	Encode(io.Writer) error
	// GetMessageID extracts the message ID field.
	GetMessageID() MessageID
	// CommandField returns the command field value of this message.
	CommandField() uint16
	// GetStatus returns the response status value. It is nil for request
	// message types, and non-nil for response message types.
	GetStatus() *Status
	// HasData is true if we expect P_DATA_TF packets after the command packets.
	HasData() bool
}

const (
	CommandFieldCStoreRq  uint16 = 0x0001
	CommandFieldCStoreRsp uint16 = 0x8001
	CommandFieldCGetRq    uint16 = 0x0010
	CommandFieldCGetRsp   uint16 = 0x8010
	CommandFieldCFindRq   uint16 = 0x0020
	CommandFieldCFindRsp  uint16 = 0x8020
	CommandFieldCMoveRq   uint16 = 0x0021
	CommandFieldCMoveRsp  uint16 = 0x8021
	CommandFieldCEchoRq   uint16 = 0x0030
	CommandFieldCEchoRsp  uint16 = 0x8030
	CommandFieldCCancelRq uint16 = 0x0FFF
)

type MessageID = uint16

// NewElement creates a command-set element for the given tag, normalising Go
// scalar values into the slice forms the dicom library expects.
func NewElement(t dicomtag.Tag, v interface{}) (*dicom.Element, error) {
	switch x := v.(type) {
	case uint16:
		return dicom.NewElement(t, []int{int(x)})
	case int:
		return dicom.NewElement(t, []int{x})
	case []int:
		return dicom.NewElement(t, x)
	case string:
		return dicom.NewElement(t, []string{x})
	case []string:
		return dicom.NewElement(t, x)
	case []byte:
		return dicom.NewElement(t, x)
	default:
		return nil, fmt.Errorf("NewElement: unsupported value type %T for tag %s", v, t.String())
	}
}

// NewSequenceElement creates a sequence (SQ) element from per-item element
// lists.
func NewSequenceElement(t dicomtag.Tag, items [][]*dicom.Element) (*dicom.Element, error) {
	return dicom.NewElement(t, items)
}

// elementBuffer accumulates command-set elements, keeping the first error.
type elementBuffer struct {
	elems []*dicom.Element
	err   error
}

func (b *elementBuffer) add(t dicomtag.Tag, v interface{}) {
	if b.err != nil {
		return
	}
	elem, err := NewElement(t, v)
	if err != nil {
		b.err = fmt.Errorf("failed to create %s element: %w", t.String(), err)
		return
	}
	b.elems = append(b.elems, elem)
}

func (b *elementBuffer) addStatus(s *Status) {
	if b.err != nil {
		return
	}
	elems, err := s.ToElements()
	if err != nil {
		b.err = fmt.Errorf("failed to create Status elements: %w", err)
		return
	}
	b.elems = append(b.elems, elems...)
}

func (b *elementBuffer) encode(out io.Writer) error {
	if b.err != nil {
		return b.err
	}
	return EncodeElements(out, b.elems)
}

// EncodeElements serialises the elements as an implicit-VR little-endian
// stream. DIMSE command sets are always encoded this way. See P3.7 6.3.1.
func EncodeElements(out io.Writer, elems []*dicom.Element) error {
	writer, err := dicom.NewWriter(out)
	if err != nil {
		return fmt.Errorf("EncodeElements: error creating writer: %w", err)
	}
	writer.SetTransferSyntax(binary.LittleEndian, true)
	for _, elem := range elems {
		if err := writer.WriteElement(elem); err != nil {
			return fmt.Errorf("EncodeElements: error writing element %s: %w", elem.Tag.String(), err)
		}
	}
	return nil
}

// EncodeMessage serialises the given message, prefixed with the
// CommandGroupLength element.
func EncodeMessage(out io.Writer, v Message) error {
	subEncoderBuffer := bytes.Buffer{}
	if err := v.Encode(&subEncoderBuffer); err != nil {
		return fmt.Errorf("EncodeMessage: error encoding message: %w", err)
	}
	element, err := NewElement(commandset.CommandGroupLength, subEncoderBuffer.Len())
	if err != nil {
		return fmt.Errorf("EncodeMessage: failed to create CommandGroupLength element: %w", err)
	}
	if err := EncodeElements(out, []*dicom.Element{element}); err != nil {
		return fmt.Errorf("EncodeMessage: failed to encode CommandGroupLength: %w", err)
	}
	if _, err := out.Write(subEncoderBuffer.Bytes()); err != nil {
		return fmt.Errorf("EncodeMessage: failed to write command set: %w", err)
	}
	return nil
}

// ReadMessage decodes a DIMSE message from a parsed command-set dataset.
func ReadMessage(dataset *dicom.Dataset) (Message, error) {
	mDecoder := MessageDecoder{
		elements: make(map[dicomtag.Tag]*dicom.Element),
	}
	for _, elem := range dataset.Elements {
		mDecoder.elements[elem.Tag] = elem
	}
	commandField, err := mDecoder.GetUInt16(commandset.CommandField, RequiredElement)
	if err != nil {
		return nil, fmt.Errorf("ReadMessage: failed to get command field: %w", err)
	}
	return mDecoder.Decode(commandField)
}
