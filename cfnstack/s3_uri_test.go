package cfnstack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3URIFromString(t *testing.T) {
	testCases := []struct {
		uri           string
		bucket        string
		keyComponents []string
		bucketAndKey  string
		canonicalized string
	}{
		{
			uri:           "s3://examplebucket",
			bucket:        "examplebucket",
			keyComponents: []string{},
			bucketAndKey:  "examplebucket",
			canonicalized: "s3://examplebucket",
		},
		{
			uri:           "s3://examplebucket/",
			bucket:        "examplebucket",
			keyComponents: []string{},
			bucketAndKey:  "examplebucket",
			canonicalized: "s3://examplebucket",
		},
		{
			uri:           "s3://examplebucket/mydir",
			bucket:        "examplebucket",
			keyComponents: []string{"mydir"},
			bucketAndKey:  "examplebucket/mydir",
			canonicalized: "s3://examplebucket/mydir",
		},
		{
			uri:           "s3://examplebucket/mydir/",
			bucket:        "examplebucket",
			keyComponents: []string{"mydir"},
			bucketAndKey:  "examplebucket/mydir",
			canonicalized: "s3://examplebucket/mydir",
		},
		{
			uri:           "s3://examplebucket/my/nested/dir",
			bucket:        "examplebucket",
			keyComponents: []string{"my/nested/dir"},
			bucketAndKey:  "examplebucket/my/nested/dir",
			canonicalized: "s3://examplebucket/my/nested/dir",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.uri, func(t *testing.T) {
			uri, err := S3URIFromString(testCase.uri)
			require.NoError(t, err)

			assert.Equal(t, testCase.bucket, uri.Bucket())
			assert.Equal(t, testCase.keyComponents, uri.KeyComponents())
			assert.Equal(t, testCase.bucketAndKey, uri.BucketAndKey())
			assert.Equal(t, testCase.canonicalized, uri.String())
		})
	}

	for _, invalid := range []string{"", "examplebucket/mydir", "http://examplebucket", "s3://"} {
		t.Run("Invalid_"+invalid, func(t *testing.T) {
			_, err := S3URIFromString(invalid)
			require.Error(t, err)
		})
	}
}
