// Package presentation carries the negotiated presentation-context snapshot
// the service-class dispatch core operates under. Exactly one transfer
// syntax is negotiated per accepted context; the snapshot is immutable for
// the lifetime of a request.
package presentation

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Well-known transfer syntax UIDs. P3.5 Annex A.
const (
	ImplicitVRLittleEndian         = "1.2.840.10008.1.2"
	ExplicitVRLittleEndian         = "1.2.840.10008.1.2.1"
	DeflatedExplicitVRLittleEndian = "1.2.840.10008.1.2.1.99"
	ExplicitVRBigEndian            = "1.2.840.10008.1.2.2"
)

// Context is the read-only input to the dispatch core: the negotiated
// presentation context identifying abstract syntax (and thus the service
// protocol) and the byte-level encoding rules of any dataset payload.
type Context struct {
	ContextID      byte   `validate:"odd"`
	AbstractSyntax string `validate:"required"`
	TransferSyntax string `validate:"required"`
	ImplicitVR     bool
	LittleEndian   bool
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Presentation context IDs are odd 8-bit values. P3.8 9.3.2.2.
	_ = v.RegisterValidation("odd", func(fl validator.FieldLevel) bool {
		return fl.Field().Uint()%2 == 1
	})
	return v
}

// NewContext builds a context snapshot, deriving the VR/endianness flags
// from the transfer syntax UID. Unrecognised (compressed) syntaxes encode
// their datasets explicit-VR little-endian.
func NewContext(contextID byte, abstractSyntax, transferSyntax string) Context {
	ctx := Context{
		ContextID:      contextID,
		AbstractSyntax: abstractSyntax,
		TransferSyntax: transferSyntax,
		ImplicitVR:     false,
		LittleEndian:   true,
	}
	switch transferSyntax {
	case ImplicitVRLittleEndian:
		ctx.ImplicitVR = true
	case ExplicitVRBigEndian:
		ctx.LittleEndian = false
	}
	return ctx
}

// Validate checks the context invariants.
func (c Context) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("presentation: invalid context: %w", err)
	}
	return nil
}

func (c Context) String() string {
	return fmt.Sprintf("Context{ID:%d AbstractSyntax:%s TransferSyntax:%s}", c.ContextID, c.AbstractSyntax, c.TransferSyntax)
}
