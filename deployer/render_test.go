package deployer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/piontas/cfndeployer/config"
	"github.com/piontas/cfndeployer/test/helper"
)

func testConfig(t *testing.T) *config.Config {
	cfg, err := config.ConfigFromBytes([]byte(`
stackName: my-stack
region: eu-west-1
`), "")
	require.NoError(t, err)
	return cfg
}

func TestRenderTemplateFile(t *testing.T) {
	cfg := testConfig(t)

	t.Run("PassesPlainJSONThrough", func(t *testing.T) {
		helper.WithTempFile(`{"Resources":{"Vpc":{"Type":"AWS::EC2::VPC"}}}`, func(path string) {
			body, err := RenderTemplateFile(path, cfg, RenderOptions{})
			require.NoError(t, err)
			assert.Equal(t, "AWS::EC2::VPC", gjson.Get(body, "Resources.Vpc.Type").String())
		})
	})

	t.Run("ExpandsTemplateDirectives", func(t *testing.T) {
		helper.WithTempFile(`{"Description":"{{.StackName}} network","Resources":{"Vpc":{"Type":"AWS::EC2::VPC"}}}`, func(path string) {
			body, err := RenderTemplateFile(path, cfg, RenderOptions{})
			require.NoError(t, err)
			assert.Equal(t, "my-stack network", gjson.Get(body, "Description").String())
		})
	})

	t.Run("NormalizesYAMLToJSON", func(t *testing.T) {
		helper.WithTempFile(`
Resources:
  Vpc:
    Type: AWS::EC2::VPC
    Properties:
      CidrBlock: 10.0.0.0/20
`, func(path string) {
			body, err := RenderTemplateFile(path, cfg, RenderOptions{})
			require.NoError(t, err)
			assert.Equal(t, "10.0.0.0/20", gjson.Get(body, "Resources.Vpc.Properties.CidrBlock").String())
		})
	})

	t.Run("AppliesSets", func(t *testing.T) {
		helper.WithTempFile(`{"Parameters":{"VpcName":{"Type":"String","Default":"test-vpc"}},"Resources":{"Vpc":{"Type":"AWS::EC2::VPC","Properties":{"EnableDnsSupport":true}}}}`, func(path string) {
			body, err := RenderTemplateFile(path, cfg, RenderOptions{
				Sets: []string{
					"Parameters.VpcName.Default=prod-vpc",
					"Resources.Vpc.Properties.EnableDnsSupport=false",
				},
			})
			require.NoError(t, err)

			assert.Equal(t, "prod-vpc", gjson.Get(body, "Parameters.VpcName.Default").String())

			dns := gjson.Get(body, "Resources.Vpc.Properties.EnableDnsSupport")
			assert.True(t, dns.Exists())
			assert.False(t, dns.Bool(), "json values are set raw, not stringified")
		})
	})

	t.Run("RejectsMalformedSets", func(t *testing.T) {
		helper.WithTempFile(`{"Resources":{"Vpc":{"Type":"AWS::EC2::VPC"}}}`, func(path string) {
			_, err := RenderTemplateFile(path, cfg, RenderOptions{Sets: []string{"no-equals-sign"}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "Path=Value")
		})
	})

	t.Run("PrettyPrints", func(t *testing.T) {
		helper.WithTempFile(`{"Resources":{"Vpc":{"Type":"AWS::EC2::VPC"}}}`, func(path string) {
			compact, err := RenderTemplateFile(path, cfg, RenderOptions{})
			require.NoError(t, err)
			pretty, err := RenderTemplateFile(path, cfg, RenderOptions{PrettyPrint: true})
			require.NoError(t, err)

			assert.NotContains(t, compact, "\n")
			assert.Contains(t, pretty, "\n")
		})
	})
}
