package helper

import (
	"bytes"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
)

// DummyS3ObjectPutterService checks a single PutObject call against the
// expected values.
type DummyS3ObjectPutterService struct {
	ExpectedBucket        string
	ExpectedKey           string
	ExpectedBody          string
	ExpectedContentType   string
	ExpectedContentLength int64
}

func (s3Svc DummyS3ObjectPutterService) PutObject(input *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	if s3Svc.ExpectedContentLength != *input.ContentLength {
		return nil, fmt.Errorf(
			"expected content length does not match supplied content length\nexpected=%v, supplied=%v",
			s3Svc.ExpectedContentLength,
			input.ContentLength,
		)
	}

	if s3Svc.ExpectedBucket != *input.Bucket {
		return nil, fmt.Errorf(
			"expected bucket does not match supplied bucket\nexpected=%v, supplied=%v",
			s3Svc.ExpectedBucket,
			input.Bucket,
		)
	}

	if s3Svc.ExpectedKey != *input.Key {
		return nil, fmt.Errorf(
			"expected key does not match supplied key\nexpected=%v, supplied=%v",
			s3Svc.ExpectedKey,
			*input.Key,
		)
	}

	if s3Svc.ExpectedContentType != *input.ContentType {
		return nil, fmt.Errorf(
			"expected content type does not match supplied content type\nexpected=%v, supplied=%v",
			s3Svc.ExpectedContentType,
			input.ContentType,
		)
	}

	buf := new(bytes.Buffer)
	buf.ReadFrom(input.Body)
	suppliedBody := buf.String()

	if s3Svc.ExpectedBody != suppliedBody {
		return nil, fmt.Errorf(
			"expected body does not match supplied body\nexpected=%v, supplied=%v",
			s3Svc.ExpectedBody,
			suppliedBody,
		)
	}

	return &s3.PutObjectOutput{}, nil
}

// DummyS3Service is an in-memory bucket for uploader tests. Keys present
// in Objects report as already existing; puts are recorded.
type DummyS3Service struct {
	Objects      map[string][]byte
	NoSuchBucket bool

	PutInputs []*s3.PutObjectInput
}

func (s3Svc *DummyS3Service) PutObject(input *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	if s3Svc.NoSuchBucket {
		return nil, awserr.New(s3.ErrCodeNoSuchBucket, "The specified bucket does not exist", nil)
	}

	buf := new(bytes.Buffer)
	buf.ReadFrom(input.Body)

	if s3Svc.Objects == nil {
		s3Svc.Objects = map[string][]byte{}
	}
	s3Svc.Objects[aws.StringValue(input.Key)] = buf.Bytes()
	s3Svc.PutInputs = append(s3Svc.PutInputs, input)

	return &s3.PutObjectOutput{}, nil
}

func (s3Svc *DummyS3Service) HeadObject(input *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
	if s3Svc.NoSuchBucket {
		return nil, awserr.New(s3.ErrCodeNoSuchBucket, "The specified bucket does not exist", nil)
	}
	if _, ok := s3Svc.Objects[aws.StringValue(input.Key)]; !ok {
		return nil, awserr.New("NotFound", "Not Found", nil)
	}
	return &s3.HeadObjectOutput{}, nil
}
