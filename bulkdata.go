package dicomscp

import (
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/medigraph/go-dicomscp/dimse"
)

// Bulk-data elements removed by the Composite Instance Retrieve Without Bulk
// Data service before the C-STORE sub-operation. P3.4 Annex Z. OverlayData,
// CurveData and AudioSampleData are repeating-group elements (even group
// offsets 0x00 through 0x1E).
var bulkDataElements = []struct {
	keyword string
	match   func(tag.Tag) bool
}{
	{"PixelData", exactTag(0x7FE0, 0x0010)},
	{"FloatPixelData", exactTag(0x7FE0, 0x0008)},
	{"DoubleFloatPixelData", exactTag(0x7FE0, 0x0009)},
	{"PixelDataProviderURL", exactTag(0x0028, 0x7FE0)},
	{"SpectroscopyData", exactTag(0x5600, 0x0020)},
	{"OverlayData", repeatingGroup(0x6000, 0x3000)},
	{"CurveData", repeatingGroup(0x5000, 0x3000)},
	{"AudioSampleData", repeatingGroup(0x5000, 0x200C)},
	{"EncapsulatedDocument", exactTag(0x0042, 0x0011)},
}

var (
	tagWaveformSequence = tag.Tag{Group: 0x5400, Element: 0x0100}
	tagWaveformData     = tag.Tag{Group: 0x5400, Element: 0x1010}
)

func exactTag(group, element uint16) func(tag.Tag) bool {
	want := tag.Tag{Group: group, Element: element}
	return func(t tag.Tag) bool { return t == want }
}

// repeatingGroup matches the repeating groups gggg+0x00 .. gggg+0x1E (even
// offsets only) at a fixed element number.
func repeatingGroup(groupBase, element uint16) func(tag.Tag) bool {
	return func(t tag.Tag) bool {
		if t.Element != element {
			return false
		}
		return t.Group >= groupBase && t.Group <= groupBase+0x1E && t.Group%2 == 0
	}
}

// stripBulkData removes the bulk-data elements from ds in place, including
// WaveformData nested inside WaveformSequence items, and returns the
// keywords of everything removed.
func stripBulkData(ds *dicom.Dataset) []string {
	var removed []string
	kept := make([]*dicom.Element, 0, len(ds.Elements))
	for _, elem := range ds.Elements {
		if kw, isBulk := bulkDataKeyword(elem.Tag); isBulk {
			removed = appendKeyword(removed, kw)
			continue
		}
		if elem.Tag == tagWaveformSequence {
			if filtered, changed := stripWaveformData(elem); changed {
				removed = appendKeyword(removed, "WaveformData")
				if filtered != nil {
					kept = append(kept, filtered)
				}
				continue
			}
		}
		kept = append(kept, elem)
	}
	ds.Elements = kept
	return removed
}

func bulkDataKeyword(t tag.Tag) (string, bool) {
	for _, bd := range bulkDataElements {
		if bd.match(t) {
			return bd.keyword, true
		}
	}
	return "", false
}

func appendKeyword(keywords []string, kw string) []string {
	for _, existing := range keywords {
		if existing == kw {
			return keywords
		}
	}
	return append(keywords, kw)
}

// stripWaveformData rebuilds a WaveformSequence element with WaveformData
// removed from each item. Returns (nil, false) when nothing needed removal
// or the items could not be read, and (nil, true) when WaveformData was found
// but the sequence could not be rebuilt.
func stripWaveformData(elem *dicom.Element) (*dicom.Element, bool) {
	items, ok := elem.Value.GetValue().([]*dicom.SequenceItemValue)
	if !ok {
		return nil, false
	}
	changed := false
	rebuilt := make([][]*dicom.Element, 0, len(items))
	for _, item := range items {
		itemElems, ok := item.GetValue().([]*dicom.Element)
		if !ok {
			return nil, false
		}
		keptElems := make([]*dicom.Element, 0, len(itemElems))
		for _, itemElem := range itemElems {
			if itemElem.Tag == tagWaveformData {
				changed = true
				continue
			}
			keptElems = append(keptElems, itemElem)
		}
		rebuilt = append(rebuilt, keptElems)
	}
	if !changed {
		return nil, false
	}
	newElem, err := dimse.NewSequenceElement(tagWaveformSequence, rebuilt)
	if err != nil {
		// Removal succeeded logically but the sequence could not be
		// rebuilt; drop the whole sequence rather than leak waveform data.
		return nil, true
	}
	return newElem, true
}
