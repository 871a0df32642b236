package swiftblob

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpvgo/stream/backend"
	streamctx "github.com/mpvgo/stream/internal/context"
)

func TestParseURL(t *testing.T) {
	container, object, err := parseURL("swift://media/file.ts")
	require.NoError(t, err)
	require.Equal(t, "media", container)
	require.Equal(t, "file.ts", object)
}

func TestParseURLMissingObject(t *testing.T) {
	_, _, err := parseURL("swift://media")
	require.Error(t, err)
}

func TestOpenRejectsWriteMode(t *testing.T) {
	_, _, status, err := open(streamctx.Background(), "swift://media/file.ts", backend.ModeWrite, &Options{AuthURL: "http://auth"})
	require.Error(t, err)
	require.Equal(t, backend.StatusUnsupported, status)
}

func TestOpenRequiresAuthURL(t *testing.T) {
	_, _, status, err := open(streamctx.Background(), "swift://media/file.ts", backend.ModeRead, &Options{})
	require.Error(t, err)
	require.Equal(t, backend.StatusError, status)
}

func TestOpenRejectsMalformedURL(t *testing.T) {
	_, _, status, err := open(streamctx.Background(), "swift://media", backend.ModeRead, &Options{AuthURL: "http://auth"})
	require.Error(t, err)
	require.Equal(t, backend.StatusError, status)
}
