package dicomscp

import (
	"github.com/suyashkumar/dicom"

	"github.com/medigraph/go-dicomscp/dimse"
)

// Association is the dispatch core's view of the association a request
// arrived on. C-GET relays its matches through SendCStore on this same
// association; C-MOVE opens a fresh outbound association to the move
// destination through Associate.
type Association interface {
	// AETitle returns the local application entity title, used as the move
	// originator AE title on C-MOVE sub-operations.
	AETitle() string

	// SendCStore issues a C-STORE sub-operation on this association and
	// blocks for the peer's response status. An error means the
	// sub-operation could not be completed at all.
	SendCStore(ds *dicom.Dataset, msgID uint16) (dimse.Status, error)

	// Associate opens an outbound association to the given address and
	// port, presenting calledAETitle as the peer AE title.
	Associate(address string, port int, calledAETitle string) (SubAssociation, error)
}

// SubAssociation is an outbound association owned by a single C-MOVE
// invocation. It must be released (or closed) on every exit path.
type SubAssociation interface {
	// IsEstablished reports whether association negotiation completed.
	IsEstablished() bool

	// SendCStore issues a C-STORE sub-operation carrying the move
	// originator identification.
	SendCStore(ds *dicom.Dataset, msgID uint16, originatorAETitle string, originatorID uint16) (dimse.Status, error)

	// Release performs a graceful A-RELEASE exchange.
	Release() error

	// Close tears down the underlying transport. It is idempotent and safe
	// to call whether or not the association was established or released.
	Close() error
}
