package deployer

import (
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piontas/cfndeployer/cfnstack"
)

type dummyInterrogator struct {
	output *cloudformation.DescribeStacksOutput
	err    error
}

func (cf dummyInterrogator) DescribeStacks(input *cloudformation.DescribeStacksInput) (*cloudformation.DescribeStacksOutput, error) {
	return cf.output, cf.err
}

func TestStackInfo(t *testing.T) {
	t.Run("CollectsStatusAndOutputs", func(t *testing.T) {
		cf := dummyInterrogator{output: &cloudformation.DescribeStacksOutput{
			Stacks: []*cloudformation.Stack{
				{
					StackName:   aws.String("my-stack"),
					StackStatus: aws.String(cloudformation.StackStatusCreateComplete),
					Outputs: []*cloudformation.Output{
						{OutputKey: aws.String("VpcId"), OutputValue: aws.String("vpc-0123456789abcdef0")},
					},
				},
			},
		}}

		info, err := StackInfo(cf, "my-stack")
		require.NoError(t, err)

		assert.Equal(t, "my-stack", info.Name)
		assert.Equal(t, cloudformation.StackStatusCreateComplete, info.Status)
		assert.Equal(t, "vpc-0123456789abcdef0", info.Outputs["VpcId"])

		rendered := info.String()
		assert.Contains(t, rendered, "Stack Name:")
		assert.Contains(t, rendered, "my-stack")
		assert.Contains(t, rendered, "VpcId")
	})

	t.Run("ReportsMissingStack", func(t *testing.T) {
		cf := dummyInterrogator{output: &cloudformation.DescribeStacksOutput{}}

		_, err := StackInfo(cf, "my-stack")
		require.Error(t, err)
		assert.True(t, cfnstack.IsStackNotFound(err))
	})
}
