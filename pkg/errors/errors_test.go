package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrResolution, "base directory does not exist")
	assert.Equal(t, ErrResolution, err.Code)
	assert.Equal(t, "[RESOLUTION] base directory does not exist", err.Error())
}

func TestWrap(t *testing.T) {
	inner := fmt.Errorf("open /etc/shadow: permission denied")
	err := Wrap(inner, ErrFileAccess, "cannot read source file")
	require.NotNil(t, err)
	assert.Equal(t, inner, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "permission denied")

	assert.Nil(t, Wrap(nil, ErrFileAccess, "ignored"))
}

func TestIs(t *testing.T) {
	err := Newf(ErrArchiveCorrupt, "truncated archive %q", "a.tar.gz")
	wrapped := fmt.Errorf("extract: %w", err)

	assert.True(t, errors.Is(wrapped, New(ErrArchiveCorrupt, "")))
	assert.False(t, errors.Is(wrapped, New(ErrResolution, "")))
}

func TestIsErrorCode(t *testing.T) {
	err := New(ErrPermissionPolicy, "requires root")
	wrapped := fmt.Errorf("config: %w", err)

	assert.True(t, IsErrorCode(wrapped, ErrPermissionPolicy))
	assert.False(t, IsErrorCode(wrapped, ErrStoreAccess))
	assert.False(t, IsErrorCode(errors.New("plain"), ErrPermissionPolicy))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrFileAccess, GetErrorCode(New(ErrFileAccess, "x")))
	assert.Equal(t, ErrUnknown, GetErrorCode(errors.New("plain")))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrNoPatternMatch, "no child matches").
		WithDetail("directive", `ENDS_WITH=".default-release"`).
		WithDetail("parent", "/home/andres/.mozilla/firefox")

	assert.Equal(t, `ENDS_WITH=".default-release"`, err.Details["directive"])
	assert.Len(t, err.Details, 2)
}
