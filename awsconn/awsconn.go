package awsconn

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials/stscreds"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/pkg/errors"

	"github.com/piontas/cfndeployer/model"
)

// NewSessionFromRegion creates an AWS session from an AWS region and a debug flag
func NewSessionFromRegion(region model.Region, debug bool) (*session.Session, error) {
	awsConfig := aws.NewConfig().
		WithRegion(region.String()).
		WithCredentialsChainVerboseErrors(true)

	if debug {
		awsConfig = awsConfig.WithLogLevel(aws.LogDebug)
	}

	sess, err := newSession(awsConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to establish aws session")
	}
	return sess, nil
}

// newSession returns an AWS session which supports source_profile and assume role with MFA
func newSession(config *aws.Config) (*session.Session, error) {
	return session.NewSessionWithOptions(session.Options{
		Config: *config,
		// Required for AWS_SDK_LOAD_CONFIG
		SharedConfigState: session.SharedConfigEnable,
		// Required by MFA
		AssumeRoleTokenProvider: stscreds.StdinTokenProvider,
	})
}
