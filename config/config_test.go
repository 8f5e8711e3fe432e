package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
stackName: my-stack
`

func TestConfigFromBytes(t *testing.T) {
	t.Run("AppliesDefaults", func(t *testing.T) {
		c, err := ConfigFromBytes([]byte(minimalConfig), "")
		require.NoError(t, err)

		assert.Equal(t, "my-stack", c.StackName)
		assert.Equal(t, "eu-west-1", c.Region.Name)
		assert.Equal(t, "stack.json", c.TemplateFile)
	})

	t.Run("ParsesFullConfig", func(t *testing.T) {
		c, err := ConfigFromBytes([]byte(`
stackName: my-stack
region: us-east-1
templateFile: templates/vpc.json
s3URI: s3://examplebucket/deployments
onFailure: DELETE
timeoutInMinutes: 30
capabilities:
- CAPABILITY_NAMED_IAM
parameters:
  CidrBlock: 192.168.0.0/16
tags:
  Environment: production
`), "")
		require.NoError(t, err)

		assert.Equal(t, "us-east-1", c.Region.Name)
		assert.Equal(t, "templates/vpc.json", c.TemplateFile)
		assert.Equal(t, "s3://examplebucket/deployments", c.S3URI)
		assert.Equal(t, "DELETE", c.OnFailure)
		assert.Equal(t, int64(30), c.TimeoutInMinutes)
		assert.Equal(t, []string{"CAPABILITY_NAMED_IAM"}, c.Capabilities)
		assert.Equal(t, "192.168.0.0/16", c.Parameters["CidrBlock"])
		assert.Equal(t, "production", c.Tags["Environment"])
	})

	t.Run("RejectsInvalidConfigs", func(t *testing.T) {
		testCases := []struct {
			subject string
			config  string
			errPart string
		}{
			{
				subject: "MissingStackName",
				config:  `region: eu-west-1`,
				errPart: "stackName is required",
			},
			{
				subject: "InvalidStackName",
				config:  `stackName: my_stack`,
				errPart: "stack name",
			},
			{
				subject: "InvalidOnFailure",
				config: minimalConfig + `
onFailure: EXPLODE`,
				errPart: "onFailure",
			},
			{
				subject: "NegativeTimeout",
				config: minimalConfig + `
timeoutInMinutes: -5`,
				errPart: "timeoutInMinutes",
			},
			{
				subject: "UnparseableS3URI",
				config: minimalConfig + `
s3URI: examplebucket/deployments`,
				errPart: "s3",
			},
			{
				subject: "KMSKeyOnChina",
				config: minimalConfig + `
region: cn-north-1
kmsKeyArn: arn:aws-cn:kms:cn-north-1:111122223333:key/mykey`,
				errPart: "KMS",
			},
			{
				subject: "InvalidRequiredVersion",
				config: minimalConfig + `
requiredVersion: banana`,
				errPart: "requiredVersion",
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.subject, func(t *testing.T) {
				_, err := ConfigFromBytes([]byte(testCase.config), "")
				require.Error(t, err)
				assert.True(t,
					strings.Contains(err.Error(), testCase.errPart),
					"expected error %q to mention %q", err, testCase.errPart)
			})
		}
	})
}

func TestEnvironments(t *testing.T) {
	config := `
stackName: my-stack
region: eu-west-1
parameters:
  CidrBlock: 10.0.0.0/20
  VpcName: test-vpc
tags:
  Team: network
environments:
  production:
    stackName: my-stack-production
    region: us-east-1
    parameters:
      VpcName: prod-vpc
`

	t.Run("OverlayOverridesBase", func(t *testing.T) {
		c, err := ConfigFromBytes([]byte(config), "production")
		require.NoError(t, err)

		assert.Equal(t, "my-stack-production", c.StackName)
		assert.Equal(t, "us-east-1", c.Region.Name)
		assert.Equal(t, "prod-vpc", c.Parameters["VpcName"], "overlay parameters win")
		assert.Equal(t, "10.0.0.0/20", c.Parameters["CidrBlock"], "untouched parameters are inherited")
		assert.Equal(t, "network", c.Tags["Team"], "tags are inherited")
	})

	t.Run("WithoutEnvironmentBaseApplies", func(t *testing.T) {
		c, err := ConfigFromBytes([]byte(config), "")
		require.NoError(t, err)

		assert.Equal(t, "my-stack", c.StackName)
		assert.Equal(t, "test-vpc", c.Parameters["VpcName"])
	})

	t.Run("UnknownEnvironmentIsAnError", func(t *testing.T) {
		_, err := ConfigFromBytes([]byte(config), "staging")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "staging")
	})
}

func TestValidateVersion(t *testing.T) {
	c, err := ConfigFromBytes([]byte(minimalConfig+`
requiredVersion: ">= 0.5.0, < 1.0.0"`), "")
	require.NoError(t, err)

	t.Run("AcceptsSatisfyingVersion", func(t *testing.T) {
		assert.NoError(t, c.ValidateVersion("v0.6.2"))
	})

	t.Run("RejectsOutOfRangeVersion", func(t *testing.T) {
		require.Error(t, c.ValidateVersion("v1.2.0"))
	})

	t.Run("SkipsNonReleaseBuilds", func(t *testing.T) {
		assert.NoError(t, c.ValidateVersion("UNKNOWN"))
	})

	t.Run("SkipsWhenUnconfigured", func(t *testing.T) {
		unconstrained, err := ConfigFromBytes([]byte(minimalConfig), "")
		require.NoError(t, err)
		assert.NoError(t, unconstrained.ValidateVersion("v9.9.9"))
	})
}
