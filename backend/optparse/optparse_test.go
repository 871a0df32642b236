package optparse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testOptions struct {
	Region  string `opt:"region"`
	Timeout int    `opt:"timeout"`
	Strict  bool   `opt:"strict"`
}

func TestParseDecodesQueryParams(t *testing.T) {
	result, err := Parse("s3://bucket/key?region=us-east-1&timeout=30&strict=true", &testOptions{})
	require.NoError(t, err)

	opts := result.(*testOptions)
	require.Equal(t, "us-east-1", opts.Region)
	require.Equal(t, 30, opts.Timeout)
	require.True(t, opts.Strict)
}

func TestParseIsCaseInsensitiveOnFieldTag(t *testing.T) {
	result, err := Parse("s3://bucket/key?REGION=eu-west-1", &testOptions{})
	require.NoError(t, err)
	require.Equal(t, "eu-west-1", result.(*testOptions).Region)
}

func TestParseNilSchemaReturnsNil(t *testing.T) {
	result, err := Parse("s3://bucket/key", nil)
	require.NoError(t, err)
	require.Nil(t, result)
}

func TestParseInvalidURL(t *testing.T) {
	_, err := Parse("://not a url", &testOptions{})
	require.Error(t, err)
}

func TestParseMissingOptionsLeavesZeroValues(t *testing.T) {
	result, err := Parse("s3://bucket/key", &testOptions{})
	require.NoError(t, err)

	opts := result.(*testOptions)
	require.Equal(t, "", opts.Region)
	require.Equal(t, 0, opts.Timeout)
}
