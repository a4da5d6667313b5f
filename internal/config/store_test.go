package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".drtd")

	s := New()
	s.SetString("Decoder.POCSAG.ContentType", "AlphaNumeric")
	s.SetInt32("Base.CenterFrequency", 1700)
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "AlphaNumeric", loaded.GetString("Decoder.POCSAG.ContentType", "none"))
	assert.Equal(t, int32(1700), loaded.GetInt32("Base.CenterFrequency", 0))
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, "fallback", s.GetString("unknown.key", "fallback"))
}

func TestLoadRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".drtd")
	require.NoError(t, os.WriteFile(path, []byte("NOPE"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestGetInt32SizeMismatchFallsBack(t *testing.T) {
	s := New()
	s.Set("key", []byte{1, 2, 3}) // not 4 bytes
	assert.Equal(t, int32(99), s.GetInt32("key", 99))
}
