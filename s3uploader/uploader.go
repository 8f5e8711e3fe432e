package s3uploader

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"

	"github.com/piontas/cfndeployer/logger"
	"github.com/piontas/cfndeployer/model"
)

// S3Service is the slice of the S3 API the uploader needs. Tests provide
// in-memory implementations.
type S3Service interface {
	PutObject(input *s3.PutObjectInput) (*s3.PutObjectOutput, error)
	HeadObject(input *s3.HeadObjectInput) (*s3.HeadObjectOutput, error)
}

// ErrNoSuchBucket is returned when the destination bucket does not exist.
var ErrNoSuchBucket = errors.New("S3 bucket does not exist")

// Uploader puts packaged artifacts into a versioned S3 bucket. Objects are
// server-side encrypted, with AES256 unless a customer managed KMS key is
// configured.
type Uploader struct {
	s3Svc       S3Service
	bucket      string
	prefix      string
	kmsKeyID    string
	region      model.Region
	forceUpload bool
}

func New(s3Svc S3Service, bucket string, region model.Region, prefix string, kmsKeyID string, forceUpload bool) *Uploader {
	return &Uploader{
		s3Svc:       s3Svc,
		bucket:      bucket,
		prefix:      prefix,
		kmsKeyID:    kmsKeyID,
		region:      region,
		forceUpload: forceUpload,
	}
}

// Upload puts the named file at remotePath and returns its s3:// URL.
// When an object already exists at that path the upload is skipped unless
// the uploader was created with forceUpload.
func (u *Uploader) Upload(filename string, remotePath string) (string, error) {
	if u.prefix != "" {
		remotePath = fmt.Sprintf("%s/%s", u.prefix, remotePath)
	}

	if !u.forceUpload && u.FileExists(remotePath) {
		logger.Debugf("skipping upload of %s: s3://%s/%s already exists", filename, u.bucket, remotePath)
		return u.MakeURL(remotePath), nil
	}

	file, err := os.Open(filename)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open %s", filename)
	}
	defer file.Close()

	input := &s3.PutObjectInput{
		Bucket:               aws.String(u.bucket),
		Key:                  aws.String(remotePath),
		Body:                 file,
		ServerSideEncryption: aws.String("AES256"),
	}
	if u.kmsKeyID != "" {
		input.ServerSideEncryption = aws.String("aws:kms")
		input.SSEKMSKeyId = aws.String(u.kmsKeyID)
	}

	logger.Infof("Uploading %s to s3://%s/%s", filename, u.bucket, remotePath)
	if _, err := u.s3Svc.PutObject(input); err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchBucket {
			return "", errors.Wrapf(ErrNoSuchBucket, "bucket %s", u.bucket)
		}
		return "", errors.Wrapf(err, "failed to upload %s", filename)
	}

	return u.MakeURL(remotePath), nil
}

// UploadWithDedup names the object after the file's MD5 checksum, so
// re-packaging unchanged artifacts does not create new objects.
func (u *Uploader) UploadWithDedup(filename string, extension string) (string, error) {
	checksum, err := FileChecksum(filename)
	if err != nil {
		return "", err
	}

	remotePath := checksum
	if extension != "" {
		remotePath = fmt.Sprintf("%s.%s", remotePath, extension)
	}

	return u.Upload(filename, remotePath)
}

// FileExists reports whether an object already exists at remotePath.
func (u *Uploader) FileExists(remotePath string) bool {
	_, err := u.s3Svc.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(remotePath),
	})
	return err == nil
}

// MakeURL returns the s3:// URL of an uploaded object.
func (u *Uploader) MakeURL(remotePath string) string {
	return fmt.Sprintf("s3://%s/%s", u.bucket, remotePath)
}

// PathStyleURL returns the path-style HTTPS URL of an uploaded object,
// optionally pinned to a version.
func (u *Uploader) PathStyleURL(key string, version string) string {
	result := fmt.Sprintf("%s/%s/%s", u.region.S3Endpoint(), u.bucket, key)
	if version != "" {
		result = fmt.Sprintf("%s?versionId=%s", result, version)
	}
	return result
}

// HTTPSURL returns the path-style HTTPS URL for the object uploaded at
// remotePath, accounting for the uploader's prefix.
func (u *Uploader) HTTPSURL(remotePath string) string {
	if u.prefix != "" {
		remotePath = fmt.Sprintf("%s/%s", u.prefix, remotePath)
	}
	return u.PathStyleURL(remotePath, "")
}

// FileChecksum returns the hex MD5 digest of a file's contents.
func FileChecksum(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open %s", filename)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", errors.Wrapf(err, "failed to checksum %s", filename)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
