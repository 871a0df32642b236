package azureblob

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpvgo/stream/backend"
	streamctx "github.com/mpvgo/stream/internal/context"
)

func TestParseURL(t *testing.T) {
	container, blob, err := parseURL("azblob://videos/movie.mkv")
	require.NoError(t, err)
	require.Equal(t, "videos", container)
	require.Equal(t, "movie.mkv", blob)
}

func TestParseURLMissingBlob(t *testing.T) {
	_, _, err := parseURL("azblob://videos")
	require.Error(t, err)
}

func TestOpenRejectsWriteMode(t *testing.T) {
	_, _, status, err := open(streamctx.Background(), "azblob://videos/movie.mkv", backend.ModeWrite, &Options{Account: "a", Key: "k"})
	require.Error(t, err)
	require.Equal(t, backend.StatusUnsupported, status)
}

func TestOpenRequiresAccountAndKey(t *testing.T) {
	_, _, status, err := open(streamctx.Background(), "azblob://videos/movie.mkv", backend.ModeRead, &Options{})
	require.Error(t, err)
	require.Equal(t, backend.StatusError, status)
}

func TestOpenRejectsMalformedURL(t *testing.T) {
	_, _, status, err := open(streamctx.Background(), "azblob://videos", backend.ModeRead, &Options{Account: "a", Key: "k"})
	require.Error(t, err)
	require.Equal(t, backend.StatusError, status)
}
