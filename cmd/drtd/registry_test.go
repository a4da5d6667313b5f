package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindDecoderIsCaseInsensitive(t *testing.T) {
	d := findDecoder("pocsag")
	if assert.NotNil(t, d) {
		assert.Equal(t, "POCSAG", d.Name())
	}
	assert.Nil(t, findDecoder("not-a-real-decoder"))
}

func TestHeadlessDecoderNamesExcludesNull(t *testing.T) {
	names := headlessDecoderNames()
	assert.Contains(t, names, "POCSAG")
	assert.NotContains(t, names, "Null")
}
