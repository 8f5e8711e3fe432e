package cfnstack

import (
	"fmt"
	"regexp"
	"strings"
)

// S3URI is a parsed s3://bucket or s3://bucket/dir location.
type S3URI interface {
	Bucket() string
	KeyComponents() []string
	BucketAndKey() string
	String() string
}

type s3URIImpl struct {
	bucket    string
	directory string
}

func (u s3URIImpl) Bucket() string {
	return u.bucket
}

func (u s3URIImpl) KeyComponents() []string {
	if u.directory != "" {
		return []string{u.directory}
	}
	return []string{}
}

func (u s3URIImpl) BucketAndKey() string {
	components := append([]string{u.bucket}, u.KeyComponents()...)
	return strings.Join(components, "/")
}

func (u s3URIImpl) String() string {
	return fmt.Sprintf("s3://%s", u.BucketAndKey())
}

var s3URIRE = regexp.MustCompile("^s3://(?P<bucket>[^/]+)(?:/(?P<directory>.+[^/]))?/*$")

func S3URIFromString(s3URI string) (S3URI, error) {
	matches := s3URIRE.FindStringSubmatch(s3URI)
	if matches == nil {
		return nil, fmt.Errorf("failed to parse s3 uri(=%s): The valid uri pattern for it is s3://mybucket/mydir or s3://mybucket", s3URI)
	}
	return s3URIImpl{
		bucket:    matches[1],
		directory: matches[2],
	}, nil
}
