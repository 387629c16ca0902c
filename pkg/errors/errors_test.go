package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageIncludesInternal(t *testing.T) {
	base := New("LEAGUE_FULL", "League is full", http.StatusConflict)
	require.Equal(t, "League is full", base.Error())

	wrapped := base.WithInternal(stderrors.New("row limit"))
	require.Contains(t, wrapped.Error(), "row limit")
	require.Equal(t, base.Code, wrapped.Code)
}

func TestFromErrorPassesThroughAppErrors(t *testing.T) {
	err := FromError(ErrForbidden)
	require.Same(t, ErrForbidden, err)
}

func TestFromErrorWrapsGenericErrors(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := FromError(cause)
	require.Equal(t, ErrInternalServer.Code, err.Code)
	require.ErrorIs(t, err, cause)
}

func TestFromErrorNil(t *testing.T) {
	require.Nil(t, FromError(nil))
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("name is required")
	require.Equal(t, http.StatusBadRequest, err.StatusCode)
	require.Equal(t, "name is required", err.Message)
}
