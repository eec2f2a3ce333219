package dicomscp

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/medigraph/go-dicomscp/dimse"
)

// Identifier datasets travel as raw byte streams encoded under the
// presentation context's transfer syntax. The glue below adapts the dicom
// library's writer to the (implicitVR, littleEndian) flag pair the upper
// layer negotiates; decoding does not pass that pair to the parser.

var (
	tagSOPInstanceUID          = tag.Tag{Group: 0x0008, Element: 0x0018}
	tagFailedSOPInstanceUIDList = tag.Tag{Group: 0x0008, Element: 0x0058}
)

func byteOrder(littleEndian bool) binary.ByteOrder {
	if littleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// encodeDataset serialises ds under the given transfer-syntax flags.
func encodeDataset(ds *dicom.Dataset, implicitVR, littleEndian bool) ([]byte, error) {
	if ds == nil {
		return nil, fmt.Errorf("encodeDataset: nil dataset")
	}
	out := bytes.Buffer{}
	writer, err := dicom.NewWriter(&out)
	if err != nil {
		return nil, fmt.Errorf("encodeDataset: error creating writer: %w", err)
	}
	writer.SetTransferSyntax(byteOrder(littleEndian), implicitVR)
	for _, elem := range ds.Elements {
		if err := writer.WriteElement(elem); err != nil {
			return nil, fmt.Errorf("encodeDataset: error writing element %s: %w", elem.Tag.String(), err)
		}
	}
	return out.Bytes(), nil
}

// encodeIdentifier is the forgiving form the pending paths use: any failure,
// a nil dataset or a value that is not a dataset at all yields an empty byte
// stream, which the caller turns into its encode-failure status.
func encodeIdentifier(v interface{}, implicitVR, littleEndian bool) []byte {
	ds, ok := v.(*dicom.Dataset)
	if !ok || ds == nil {
		return nil
	}
	encoded, err := encodeDataset(ds, implicitVR, littleEndian)
	if err != nil {
		return nil
	}
	return encoded
}

// decodeDataset parses an identifier byte stream. An empty stream is an
// empty dataset, not an error; a broken stream is. implicitVR and
// littleEndian are not used: dicom.Parse is left to infer the transfer
// syntax from the stream itself.
func decodeDataset(data []byte, implicitVR, littleEndian bool) (*dicom.Dataset, error) {
	if len(data) == 0 {
		return &dicom.Dataset{}, nil
	}
	reader := bytes.NewReader(data)
	ds, err := dicom.Parse(reader, int64(reader.Len()), nil,
		dicom.SkipPixelData(), dicom.SkipMetadataReadOnNewParserInit())
	if err != nil {
		return nil, fmt.Errorf("decodeDataset: failed to parse identifier: %w", err)
	}
	return &ds, nil
}

// failedInstancesDataset synthesises the terminal-response identifier: a
// dataset holding only (0008,0058) Failed SOP Instance UID List.
func failedInstancesDataset(uids []string) *dicom.Dataset {
	if uids == nil {
		uids = []string{}
	}
	elem, err := dimse.NewElement(tagFailedSOPInstanceUIDList, uids)
	if err != nil {
		return &dicom.Dataset{}
	}
	return &dicom.Dataset{Elements: []*dicom.Element{elem}}
}

func datasetHasTag(ds *dicom.Dataset, t tag.Tag) bool {
	if ds == nil {
		return false
	}
	for _, elem := range ds.Elements {
		if elem.Tag == t {
			return true
		}
	}
	return false
}

// sopInstanceUID extracts (0008,0018) from a dataset, if present.
func sopInstanceUID(ds *dicom.Dataset) (string, bool) {
	if ds == nil {
		return "", false
	}
	for _, elem := range ds.Elements {
		if elem.Tag == tagSOPInstanceUID {
			if s, err := elementString(elem); err == nil {
				return s, true
			}
			return "", false
		}
	}
	return "", false
}

func elementString(elem *dicom.Element) (string, error) {
	if elem.Value == nil || elem.Value.GetValue() == nil {
		return "", fmt.Errorf("element %s has no value", elem.Tag.String())
	}
	v, ok := elem.Value.GetValue().([]string)
	if !ok {
		return "", fmt.Errorf("element %s is not a string", elem.Tag.String())
	}
	if len(v) == 0 {
		return "", nil
	}
	return v[0], nil
}

func elementUint16(elem *dicom.Element) (uint16, error) {
	if elem.Value == nil || elem.Value.GetValue() == nil {
		return 0, fmt.Errorf("element %s has no value", elem.Tag.String())
	}
	v, ok := elem.Value.GetValue().([]int)
	if !ok || len(v) == 0 {
		return 0, fmt.Errorf("element %s is not an int", elem.Tag.String())
	}
	if v[0] < 0 || v[0] > 65535 {
		return 0, fmt.Errorf("element %s value %d out of uint16 range", elem.Tag.String(), v[0])
	}
	return uint16(v[0]), nil
}
