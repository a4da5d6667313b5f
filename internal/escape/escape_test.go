package escape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByteEscaping(t *testing.T) {
	assert.Equal(t, "<NUL>", Byte(0))
	assert.Equal(t, "<US>", Byte(31))
	assert.Equal(t, "<DEL>", Byte(127))
	assert.Equal(t, "A", Byte('A'))
	// High bit masked before escaping.
	assert.Equal(t, "A", Byte('A'|0x80))
	assert.Equal(t, "<NUL>", Byte(0x80))
}

func TestStringEscaping(t *testing.T) {
	assert.Equal(t, "hi<NUL>there", String([]byte("hi\x00there")))
}
