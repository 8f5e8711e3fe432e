package helper

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/cloudformation"
)

// DummyCloudformationService stands in for the CloudFormation API. Stack
// statuses are served from StackStatusQueue first, one per DescribeStacks
// call, then from StackStatus; an empty status yields the ValidationError
// a missing stack produces.
type DummyCloudformationService struct {
	ExpectedTags          []*cloudformation.Tag
	StackEvents           []*cloudformation.StackEvent
	StackStatusQueue      []string
	StackStatus           string
	StackName             string
	ChangeSetStatus       string
	ChangeSetStatusReason string
	TemplateBody          string

	CreateStackInput     *cloudformation.CreateStackInput
	UpdateStackInput     *cloudformation.UpdateStackInput
	DeleteStackInput     *cloudformation.DeleteStackInput
	CreateChangeSetInput *cloudformation.CreateChangeSetInput
	ExecutedChangeSet    *cloudformation.ExecuteChangeSetInput
}

func (cfSvc *DummyCloudformationService) nextStatus() string {
	if len(cfSvc.StackStatusQueue) > 0 {
		status := cfSvc.StackStatusQueue[0]
		cfSvc.StackStatusQueue = cfSvc.StackStatusQueue[1:]
		return status
	}
	return cfSvc.StackStatus
}

func (cfSvc *DummyCloudformationService) CreateStack(req *cloudformation.CreateStackInput) (*cloudformation.CreateStackOutput, error) {
	if cfSvc.ExpectedTags != nil {
		if len(cfSvc.ExpectedTags) != len(req.Tags) {
			return nil, fmt.Errorf(
				"expected tag count does not match supplied tag count\nexpected=%v, supplied=%v",
				cfSvc.ExpectedTags,
				req.Tags,
			)
		}

		matchCnt := 0
		for _, eTag := range cfSvc.ExpectedTags {
			for _, tag := range req.Tags {
				if *tag.Key == *eTag.Key && *tag.Value == *eTag.Value {
					matchCnt++
					break
				}
			}
		}

		if matchCnt != len(cfSvc.ExpectedTags) {
			return nil, fmt.Errorf(
				"not all tags matched\nexpected=%v, observed=%v",
				cfSvc.ExpectedTags,
				req.Tags,
			)
		}
	}

	cfSvc.CreateStackInput = req

	return &cloudformation.CreateStackOutput{
		StackId: req.StackName,
	}, nil
}

func (cfSvc *DummyCloudformationService) UpdateStack(req *cloudformation.UpdateStackInput) (*cloudformation.UpdateStackOutput, error) {
	cfSvc.UpdateStackInput = req
	return &cloudformation.UpdateStackOutput{
		StackId: req.StackName,
	}, nil
}

func (cfSvc *DummyCloudformationService) DeleteStack(req *cloudformation.DeleteStackInput) (*cloudformation.DeleteStackOutput, error) {
	cfSvc.DeleteStackInput = req
	return &cloudformation.DeleteStackOutput{}, nil
}

func (cfSvc *DummyCloudformationService) DescribeStacks(req *cloudformation.DescribeStacksInput) (*cloudformation.DescribeStacksOutput, error) {
	status := cfSvc.nextStatus()
	if status == "" {
		return nil, awserr.New("ValidationError", fmt.Sprintf("Stack with id %s does not exist", aws.StringValue(req.StackName)), nil)
	}

	name := cfSvc.StackName
	if name == "" {
		name = aws.StringValue(req.StackName)
	}

	return &cloudformation.DescribeStacksOutput{
		Stacks: []*cloudformation.Stack{
			{
				StackName:   aws.String(name),
				StackStatus: aws.String(status),
			},
		},
	}, nil
}

func (cfSvc *DummyCloudformationService) DescribeStackEvents(req *cloudformation.DescribeStackEventsInput) (*cloudformation.DescribeStackEventsOutput, error) {
	return &cloudformation.DescribeStackEventsOutput{
		StackEvents: cfSvc.StackEvents,
	}, nil
}

func (cfSvc *DummyCloudformationService) CreateChangeSet(req *cloudformation.CreateChangeSetInput) (*cloudformation.CreateChangeSetOutput, error) {
	cfSvc.CreateChangeSetInput = req
	return &cloudformation.CreateChangeSetOutput{
		Id: aws.String("arn:aws:cloudformation:change-set/" + aws.StringValue(req.ChangeSetName)),
	}, nil
}

func (cfSvc *DummyCloudformationService) DescribeChangeSet(req *cloudformation.DescribeChangeSetInput) (*cloudformation.DescribeChangeSetOutput, error) {
	return &cloudformation.DescribeChangeSetOutput{
		ChangeSetName: req.ChangeSetName,
		Status:        aws.String(cfSvc.ChangeSetStatus),
		StatusReason:  aws.String(cfSvc.ChangeSetStatusReason),
	}, nil
}

func (cfSvc *DummyCloudformationService) ExecuteChangeSet(req *cloudformation.ExecuteChangeSetInput) (*cloudformation.ExecuteChangeSetOutput, error) {
	cfSvc.ExecutedChangeSet = req
	return &cloudformation.ExecuteChangeSetOutput{}, nil
}

func (cfSvc *DummyCloudformationService) EstimateTemplateCost(req *cloudformation.EstimateTemplateCostInput) (*cloudformation.EstimateTemplateCostOutput, error) {
	return &cloudformation.EstimateTemplateCostOutput{
		Url: aws.String("https://calculator.s3.amazonaws.com/calc5.html#estimate"),
	}, nil
}

func (cfSvc *DummyCloudformationService) GetTemplate(req *cloudformation.GetTemplateInput) (*cloudformation.GetTemplateOutput, error) {
	if cfSvc.TemplateBody == "" {
		return nil, awserr.New("ValidationError", fmt.Sprintf("Stack with id %s does not exist", aws.StringValue(req.StackName)), nil)
	}
	return &cloudformation.GetTemplateOutput{
		TemplateBody: aws.String(cfSvc.TemplateBody),
	}, nil
}
