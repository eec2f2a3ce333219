//go:generate stringer -type StatusCode
package dimse

import (
	"fmt"

	"github.com/medigraph/go-dicomscp/commandset"
	"github.com/suyashkumar/dicom"
)

// Status represents the result of a DIMSE call. P3.7 Annex C defines the
// status codes and the optional payload elements.
type Status struct {
	// Status==StatusSuccess on success. A non-zero value otherwise.
	Status StatusCode

	// Optional error payloads.
	ErrorComment     string // Encoded as (0000,0902)
	OffendingElement []int  // Encoded as (0000,0901)
}

// Success is an OK status for a call.
var Success = Status{Status: StatusSuccess}

// StatusCode represents a DIMSE service response code, as defined in P3.7.
type StatusCode uint16

const (
	StatusSuccess StatusCode = 0x0000
	StatusCancel  StatusCode = 0xFE00
	StatusPending StatusCode = 0xFF00

	// Pending with one or more unsupported Optional Keys (C-FIND).
	StatusPendingWarning StatusCode = 0xFF01

	StatusSOPClassNotSupported  StatusCode = 0x0122
	StatusInvalidArgumentValue  StatusCode = 0x0115
	StatusInvalidAttributeValue StatusCode = 0x0106
	StatusInvalidObjectInstance StatusCode = 0x0117
	StatusDuplicateInvocation   StatusCode = 0x0210
	StatusUnrecognizedOperation StatusCode = 0x0211
	StatusMistypedArgument      StatusCode = 0x0212
	StatusNotAuthorized         StatusCode = 0x0124

	// C-STORE-specific status codes. P3.4 GG4-1.
	CStoreOutOfResources              StatusCode = 0xA700
	CStoreCannotUnderstand            StatusCode = 0xC000
	CStoreDataSetDoesNotMatchSOPClass StatusCode = 0xA900

	// C-FIND-specific status codes.
	CFindOutOfResources  StatusCode = 0xA700
	CFindUnableToProcess StatusCode = 0xC000

	// C-MOVE/C-GET-specific status codes.
	CMoveOutOfResourcesUnableToCalculateNumberOfMatches StatusCode = 0xA701
	CMoveOutOfResourcesUnableToPerformSubOperations     StatusCode = 0xA702
	CMoveMoveDestinationUnknown                         StatusCode = 0xA801
	CMoveDataSetDoesNotMatchSOPClass                    StatusCode = 0xA900

	// Sub-operations completed with one or more failures or warnings.
	StatusSubOpsCompleteWithFailures StatusCode = 0xB000

	// Warning codes.
	StatusAttributeValueOutOfRange StatusCode = 0x0116
	StatusAttributeListError       StatusCode = 0x0107
)

// Priority values for the (0000,0700) Priority command element.
const (
	PriorityMedium uint16 = 0x0000
	PriorityHigh   uint16 = 0x0001
	PriorityLow    uint16 = 0x0002
)

func (s *Status) ToElements() ([]*dicom.Element, error) {
	statusElement, err := NewElement(commandset.Status, uint16(s.Status))
	if err != nil {
		return nil, fmt.Errorf("Status.ToElements: error creating status element with status %v: %w", s.Status, err)
	}
	elems := []*dicom.Element{statusElement}
	if len(s.OffendingElement) > 0 {
		offendingElement, err := NewElement(commandset.OffendingElement, s.OffendingElement)
		if err != nil {
			return nil, fmt.Errorf("Status.ToElements: error creating offending element list: %w", err)
		}
		elems = append(elems, offendingElement)
	}
	if s.ErrorComment != "" {
		errorCommentElement, err := NewElement(commandset.ErrorComment, s.ErrorComment)
		if err != nil {
			return nil, fmt.Errorf("Status.ToElements: error creating error comment element with comment %v: %w", s.ErrorComment, err)
		}
		elems = append(elems, errorCommentElement)
	}
	return elems, nil
}

func (s Status) String() string {
	if s.ErrorComment == "" {
		return fmt.Sprintf("Status{0x%04x}", uint16(s.Status))
	}
	return fmt.Sprintf("Status{0x%04x %q}", uint16(s.Status), s.ErrorComment)
}
