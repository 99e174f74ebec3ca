package gaudi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFrameAccumulatesUntilBlankLine(t *testing.T) {
	frame := NewFrame()

	_, complete := frame("0, uuid-a, HL-325L, 1.22.1-97ec1a4, 131072 MiB, 672 MiB, 130400 MiB, 226 W, 850 W, 36 C, 0 %")
	assert.False(t, complete)

	_, complete = frame("1, uuid-b, HL-325L, 1.22.1-97ec1a4, 131072 MiB, 672 MiB, 130400 MiB, 230 W, 850 W, 39 C, 0 %")
	assert.False(t, complete)

	sample, complete := frame("")
	assert.True(t, complete)
	assert.Contains(t, sample, "uuid-a")
	assert.Contains(t, sample, "uuid-b")

	data, err := ParseHLSMIOutput(sample)
	assert.NoError(t, err)
	assert.Len(t, data.Devices, 2)
}

func TestNewFrameIgnoresRepeatedBlankLines(t *testing.T) {
	frame := NewFrame()
	_, complete := frame("")
	assert.False(t, complete, "no buffered lines yet, nothing to flush")
}
