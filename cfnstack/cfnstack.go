package cfnstack

import (
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/aws/aws-sdk-go/service/s3"
)

// CFN_TEMPLATE_SIZE_LIMIT is the maximum template body size accepted by the
// CreateStack/UpdateStack APIs. Bigger templates must be uploaded to S3 and
// referenced by URL.
var CFN_TEMPLATE_SIZE_LIMIT = 51200

type CreationService interface {
	CreateStack(*cloudformation.CreateStackInput) (*cloudformation.CreateStackOutput, error)
}

type UpdateService interface {
	UpdateStack(input *cloudformation.UpdateStackInput) (*cloudformation.UpdateStackOutput, error)
}

type DeletionService interface {
	DeleteStack(input *cloudformation.DeleteStackInput) (*cloudformation.DeleteStackOutput, error)
}

type ChangeSetService interface {
	CreateChangeSet(input *cloudformation.CreateChangeSetInput) (*cloudformation.CreateChangeSetOutput, error)
	DescribeChangeSet(input *cloudformation.DescribeChangeSetInput) (*cloudformation.DescribeChangeSetOutput, error)
	ExecuteChangeSet(input *cloudformation.ExecuteChangeSetInput) (*cloudformation.ExecuteChangeSetOutput, error)
}

// CFInterrogator is the read-only surface used to inspect existing stacks.
type CFInterrogator interface {
	DescribeStacks(input *cloudformation.DescribeStacksInput) (*cloudformation.DescribeStacksOutput, error)
}

type CRUDService interface {
	CreationService
	UpdateService
	DeletionService
	ChangeSetService
	CFInterrogator
	DescribeStackEvents(input *cloudformation.DescribeStackEventsInput) (*cloudformation.DescribeStackEventsOutput, error)
	EstimateTemplateCost(input *cloudformation.EstimateTemplateCostInput) (*cloudformation.EstimateTemplateCostOutput, error)
	GetTemplate(input *cloudformation.GetTemplateInput) (*cloudformation.GetTemplateOutput, error)
}

type S3ObjectPutterService interface {
	PutObject(input *s3.PutObjectInput) (*s3.PutObjectOutput, error)
}

// StackExists reports whether an active stack with the given name exists.
// Stacks being reviewed for an unexecuted change set and deleted stacks do
// not count as existing.
func StackExists(cf CFInterrogator, stackName string) (bool, error) {
	out, err := cf.DescribeStacks(&cloudformation.DescribeStacksInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		if isStackNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	if out == nil {
		return false, nil
	}

	for _, stack := range out.Stacks {
		if aws.StringValue(stack.StackName) != stackName {
			continue
		}
		if stack.DeletionTime != nil {
			continue
		}
		if aws.StringValue(stack.StackStatus) == cloudformation.StackStatusReviewInProgress {
			continue
		}
		return true, nil
	}
	return false, nil
}

// isStackNotFoundError detects the ValidationError DescribeStacks returns
// for unknown stack names.
func isStackNotFoundError(err error) bool {
	if aerr, ok := err.(awserr.Error); ok {
		return aerr.Code() == "ValidationError" && strings.Contains(aerr.Message(), "does not exist")
	}
	return false
}

// StackEventErrMsgs summarizes the failed events of a stack operation.
func StackEventErrMsgs(events []*cloudformation.StackEvent) []string {
	var errMsgs []string

	for _, event := range events {
		if aws.StringValue(event.ResourceStatus) == cloudformation.ResourceStatusCreateFailed {
			// Only show actual failures, not cancelled dependent resources.
			if aws.StringValue(event.ResourceStatusReason) != "Resource creation cancelled" {
				errMsgs = append(errMsgs,
					strings.TrimSpace(
						strings.Join([]string{
							aws.StringValue(event.ResourceStatus),
							aws.StringValue(event.ResourceType),
							aws.StringValue(event.LogicalResourceId),
							aws.StringValue(event.ResourceStatusReason),
						}, " ")))
			}
		}
	}

	return errMsgs
}
