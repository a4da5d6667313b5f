package bch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestEncodeCorrectRoundTripNoError(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		payload := uint32(rapid.IntRange(0, (1<<21)-1).Draw(t, "payload"))
		codeword := Encode(payload)

		corrected, ok := Correct(codeword)
		assert.True(t, ok)
		assert.Equal(t, payload, Payload(corrected))
	})
}

func TestCorrectsSingleBitError(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		payload := uint32(rapid.IntRange(0, (1<<21)-1).Draw(t, "payload"))
		bitPos := rapid.IntRange(0, 30).Draw(t, "bitPos")

		codeword := Encode(payload)
		corrupted := codeword ^ (1 << uint(bitPos))

		corrected, ok := Correct(corrupted)
		assert.True(t, ok)
		assert.Equal(t, codeword, corrected)
	})
}

func TestCorrectsDoubleBitError(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		payload := uint32(rapid.IntRange(0, (1<<21)-1).Draw(t, "payload"))
		bit1 := rapid.IntRange(0, 30).Draw(t, "bit1")
		bit2 := rapid.IntRange(0, 30).Draw(t, "bit2")
		if bit2 == bit1 {
			bit2 = (bit2 + 1) % 31
		}

		codeword := Encode(payload)
		corrupted := codeword ^ (1 << uint(bit1)) ^ (1 << uint(bit2))

		corrected, ok := Correct(corrupted)
		assert.True(t, ok)
		assert.Equal(t, codeword, corrected)
	})
}

func TestFieldIsOrder31(t *testing.T) {
	for i := 1; i < n; i++ {
		assert.NotEqual(t, Poly(1), field.Pow(i), "alpha^%d should not be 1 before the full period", i)
	}
	assert.Equal(t, Poly(1), field.Pow(n))
}
