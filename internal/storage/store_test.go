package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndDelete(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	link, size, err := s.Save(strings.NewReader("fake image bytes"), "avatar.PNG")
	require.NoError(t, err)
	assert.Equal(t, int64(16), size)
	assert.True(t, strings.HasSuffix(link, ".png"))

	_, err = os.Stat(filepath.Join(s.Root, link))
	require.NoError(t, err)

	require.NoError(t, s.Delete(link))
	_, err = os.Stat(filepath.Join(s.Root, link))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveRejectsUnsupportedType(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, _, err = s.Save(strings.NewReader("#!/bin/sh"), "payload.sh")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, _, err = s.Save(strings.NewReader("x"), "noextension")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestDeleteMissingFileIsNoError(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, s.Delete("1700000000_gone.png"))
}

func TestDeleteRejectsTraversal(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete("../escape.png"), ErrBadLink)
	assert.ErrorIs(t, s.Delete("a/b.png"), ErrBadLink)
}
