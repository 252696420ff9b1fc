package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing to report image/png
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newStore(t *testing.T, max int64) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "uploads"), "/uploads/", max)
	require.NoError(t, err)
	return s
}

func TestLocalStore_SaveAndDelete(t *testing.T) {
	s := newStore(t, 1<<20)

	p, err := s.Save(context.Background(), bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "/uploads/"))
	assert.True(t, strings.HasSuffix(p, ".png"))

	onDisk := filepath.Join(s.Dir, filepath.Base(p))
	_, err = os.Stat(onDisk)
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), p))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(context.Background(), p), "deleting twice is harmless")
}

func TestLocalStore_RejectsNonImages(t *testing.T) {
	s := newStore(t, 1<<20)

	_, err := s.Save(context.Background(), strings.NewReader("#!/bin/sh\necho hi\n"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestLocalStore_RejectsOversize(t *testing.T) {
	s := newStore(t, int64(len(pngHeader)-1))

	_, err := s.Save(context.Background(), bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestLocalStore_DeleteOutsidePrefix(t *testing.T) {
	s := newStore(t, 1<<20)
	assert.Error(t, s.Delete(context.Background(), "/etc/passwd"))
}
