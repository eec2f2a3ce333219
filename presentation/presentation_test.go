package presentation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medigraph/go-dicomscp/presentation"
)

func TestNewContextDerivesTransferSyntaxFlags(t *testing.T) {
	ctx := presentation.NewContext(1, "1.2.840.10008.1.1", presentation.ImplicitVRLittleEndian)
	assert.True(t, ctx.ImplicitVR)
	assert.True(t, ctx.LittleEndian)

	ctx = presentation.NewContext(1, "1.2.840.10008.1.1", presentation.ExplicitVRLittleEndian)
	assert.False(t, ctx.ImplicitVR)
	assert.True(t, ctx.LittleEndian)

	ctx = presentation.NewContext(1, "1.2.840.10008.1.1", presentation.ExplicitVRBigEndian)
	assert.False(t, ctx.ImplicitVR)
	assert.False(t, ctx.LittleEndian)

	// Compressed syntaxes encode their datasets explicit-VR little-endian.
	ctx = presentation.NewContext(1, "1.2.840.10008.1.1", "1.2.840.10008.1.2.4.70")
	assert.False(t, ctx.ImplicitVR)
	assert.True(t, ctx.LittleEndian)
}

func TestContextValidate(t *testing.T) {
	ctx := presentation.NewContext(3, "1.2.840.10008.1.1", presentation.ImplicitVRLittleEndian)
	assert.NoError(t, ctx.Validate())

	// Context IDs are odd 8-bit values.
	ctx = presentation.NewContext(4, "1.2.840.10008.1.1", presentation.ImplicitVRLittleEndian)
	assert.Error(t, ctx.Validate())

	ctx = presentation.NewContext(1, "", presentation.ImplicitVRLittleEndian)
	assert.Error(t, ctx.Validate())

	ctx = presentation.NewContext(1, "1.2.840.10008.1.1", "")
	assert.Error(t, ctx.Validate())
}
