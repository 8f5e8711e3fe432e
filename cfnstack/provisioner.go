package cfnstack

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"

	"github.com/piontas/cfndeployer/model"
)

var stackPollInterval = 3 * time.Second

// CreateOptions tunes behavior specific to direct stack creation.
type CreateOptions struct {
	OnFailure        string
	DisableRollback  bool
	TimeoutInMinutes int64
}

// Provisioner submits a stack declaration to CloudFormation and tracks the
// engine reconciling it. It holds everything shared between the create,
// update, delete and change-set flows.
type Provisioner struct {
	stackName       string
	stackTags       map[string]string
	stackParameters map[string]string
	stackPolicyBody string
	capabilities    []string
	createOpts      CreateOptions
	s3URI           string
	region          model.Region
	session         *session.Session
}

func NewProvisioner(name string, stackTags map[string]string, stackParameters map[string]string, stackPolicyBody string, s3URI string, region model.Region, session *session.Session) *Provisioner {
	return &Provisioner{
		stackName:       name,
		stackTags:       stackTags,
		stackParameters: stackParameters,
		stackPolicyBody: stackPolicyBody,
		s3URI:           s3URI,
		region:          region,
		session:         session,
	}
}

func (c *Provisioner) WithCapabilities(capabilities []string) *Provisioner {
	c.capabilities = capabilities
	return c
}

func (c *Provisioner) WithCreateOptions(opts CreateOptions) *Provisioner {
	c.createOpts = opts
	return c
}

func (c *Provisioner) StackName() string {
	return c.stackName
}

// uploadFile puts content under <s3URI>/<stackName>/<filename> and returns
// the path-style HTTPS URL CloudFormation accepts as a TemplateURL.
func (c *Provisioner) uploadFile(s3Svc S3ObjectPutterService, content string, filename string) (string, error) {
	uri, err := S3URIFromString(c.s3URI)
	if err != nil {
		return "", err
	}

	key := strings.Join(append(uri.KeyComponents(), c.stackName, filename), "/")

	contentLength := int64(len(content))
	body := strings.NewReader(content)

	_, err = s3Svc.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(uri.Bucket()),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(contentLength),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s/%s", c.region.S3Endpoint(), uri.Bucket(), key), nil
}

// uploadTemplateIfNecessary moves the template body to S3 when it exceeds
// the CloudFormation request size limit. It returns nil when the body is
// small enough to be submitted inline.
func (c *Provisioner) uploadTemplateIfNecessary(s3Svc S3ObjectPutterService, stackBody string) (*string, error) {
	if len(stackBody) <= CFN_TEMPLATE_SIZE_LIMIT {
		return nil, nil
	}

	if c.s3URI == "" {
		return nil, fmt.Errorf("stack template's size(=%d) exceeds the %d bytes limit of cloudformation. `s3URI: s3://<bucket>/path/to/dir` must be configured to upload it to S3 beforehand", len(stackBody), CFN_TEMPLATE_SIZE_LIMIT)
	}

	templateURL, err := c.uploadFile(s3Svc, stackBody, "stack.json")
	if err != nil {
		return nil, errors.Wrap(err, "template upload failed")
	}

	return &templateURL, nil
}

func (c *Provisioner) tags() []*cloudformation.Tag {
	var tags []*cloudformation.Tag
	for k, v := range c.stackTags {
		key := k
		value := v
		tags = append(tags, &cloudformation.Tag{Key: &key, Value: &value})
	}
	return tags
}

func (c *Provisioner) parameters() []*cloudformation.Parameter {
	var params []*cloudformation.Parameter
	for k, v := range c.stackParameters {
		key := k
		value := v
		params = append(params, &cloudformation.Parameter{ParameterKey: &key, ParameterValue: &value})
	}
	return params
}

func (c *Provisioner) capabilityList() []*string {
	if len(c.capabilities) == 0 {
		return []*string{aws.String(cloudformation.CapabilityCapabilityIam)}
	}
	return aws.StringSlice(c.capabilities)
}

func (c *Provisioner) baseCreateStackInput() *cloudformation.CreateStackInput {
	input := &cloudformation.CreateStackInput{
		StackName:    aws.String(c.stackName),
		OnFailure:    aws.String(cloudformation.OnFailureDoNothing),
		Capabilities: c.capabilityList(),
		Tags:         c.tags(),
		Parameters:   c.parameters(),
	}
	if c.stackPolicyBody != "" {
		input.StackPolicyBody = aws.String(c.stackPolicyBody)
	}
	if c.createOpts.OnFailure != "" {
		input.OnFailure = aws.String(c.createOpts.OnFailure)
	}
	if c.createOpts.DisableRollback {
		input.DisableRollback = aws.Bool(true)
		input.OnFailure = nil
	}
	if c.createOpts.TimeoutInMinutes > 0 {
		input.TimeoutInMinutes = aws.Int64(c.createOpts.TimeoutInMinutes)
	}
	return input
}

// CreateStack submits a create request, uploading the template to S3 first
// when it is too large to submit inline. The target stack must not exist.
func (c *Provisioner) CreateStack(cfSvc CRUDService, s3Svc S3ObjectPutterService, stackBody string) (*cloudformation.CreateStackOutput, error) {
	exists, err := StackExists(cfSvc, c.stackName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check stack existence")
	}
	if exists {
		return nil, errors.Wrapf(ErrStackAlreadyExists, "stack %s", c.stackName)
	}

	templateURL, err := c.uploadTemplateIfNecessary(s3Svc, stackBody)
	if err != nil {
		return nil, err
	}

	input := c.baseCreateStackInput()
	if templateURL != nil {
		input.TemplateURL = templateURL
	} else {
		input.TemplateBody = aws.String(stackBody)
	}

	resp, err := cfSvc.CreateStack(input)
	if err != nil {
		return nil, errors.Wrap(err, "stack creation failed")
	}
	return resp, nil
}

func (c *Provisioner) CreateStackAndWait(cfSvc CRUDService, s3Svc S3ObjectPutterService, stackBody string) error {
	resp, err := c.CreateStack(cfSvc, s3Svc, stackBody)
	if err != nil {
		return err
	}
	return c.waitUntilCreated(cfSvc, resp.StackId)
}

func (c *Provisioner) waitUntilCreated(cfSvc CRUDService, stackID *string) error {
	req := cloudformation.DescribeStacksInput{
		StackName: stackID,
	}

	for {
		resp, err := cfSvc.DescribeStacks(&req)
		if err != nil {
			return err
		}
		if len(resp.Stacks) == 0 {
			return fmt.Errorf("stack not found")
		}
		statusString := aws.StringValue(resp.Stacks[0].StackStatus)
		switch statusString {
		case cloudformation.StackStatusCreateComplete:
			return nil
		case cloudformation.StackStatusCreateFailed, cloudformation.StackStatusRollbackComplete, cloudformation.StackStatusRollbackFailed:
			errMsg := fmt.Sprintf(
				"Stack creation failed: %s : %s",
				statusString,
				aws.StringValue(resp.Stacks[0].StackStatusReason),
			)
			errMsg = errMsg + "\n\nPrinting the most recent failed stack events:\n"

			stackEventsOutput, err := cfSvc.DescribeStackEvents(
				&cloudformation.DescribeStackEventsInput{
					StackName: resp.Stacks[0].StackName,
				})
			if err != nil {
				return err
			}
			errMsg = errMsg + strings.Join(StackEventErrMsgs(stackEventsOutput.StackEvents), "\n")
			return errors.New(errMsg)
		case cloudformation.StackStatusCreateInProgress, cloudformation.StackStatusRollbackInProgress:
			time.Sleep(stackPollInterval)
			continue
		default:
			return fmt.Errorf("unexpected stack status: %s", statusString)
		}
	}
}

func (c *Provisioner) baseUpdateStackInput() *cloudformation.UpdateStackInput {
	input := &cloudformation.UpdateStackInput{
		StackName:    aws.String(c.stackName),
		Capabilities: c.capabilityList(),
		Tags:         c.tags(),
		Parameters:   c.parameters(),
	}
	if c.stackPolicyBody != "" {
		input.StackPolicyBody = aws.String(c.stackPolicyBody)
	}
	return input
}

// UpdateStack submits an update request for an existing stack. A no-op
// update is reported as ErrNoUpdatesToPerform.
func (c *Provisioner) UpdateStack(cfSvc CRUDService, s3Svc S3ObjectPutterService, stackBody string) (*cloudformation.UpdateStackOutput, error) {
	exists, err := StackExists(cfSvc, c.stackName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check stack existence")
	}
	if !exists {
		return nil, errors.Wrapf(ErrStackNotFound, "stack %s", c.stackName)
	}

	templateURL, err := c.uploadTemplateIfNecessary(s3Svc, stackBody)
	if err != nil {
		return nil, err
	}

	input := c.baseUpdateStackInput()
	if templateURL != nil {
		input.TemplateURL = templateURL
	} else {
		input.TemplateBody = aws.String(stackBody)
	}

	resp, err := cfSvc.UpdateStack(input)
	if err != nil {
		if isNoUpdateError(err) {
			return nil, errors.Wrapf(ErrNoUpdatesToPerform, "stack %s", c.stackName)
		}
		return nil, errors.Wrap(err, "stack update failed")
	}
	return resp, nil
}

func (c *Provisioner) UpdateStackAndWait(cfSvc CRUDService, s3Svc S3ObjectPutterService, stackBody string) (string, error) {
	updateOutput, err := c.UpdateStack(cfSvc, s3Svc, stackBody)
	if err != nil {
		return "", err
	}
	if err := c.waitUntilUpdated(cfSvc, updateOutput.StackId); err != nil {
		return "", err
	}
	return updateOutput.String(), nil
}

func (c *Provisioner) waitUntilUpdated(cfSvc CRUDService, stackID *string) error {
	req := cloudformation.DescribeStacksInput{
		StackName: stackID,
	}

	for {
		resp, err := cfSvc.DescribeStacks(&req)
		if err != nil {
			return err
		}
		if len(resp.Stacks) == 0 {
			return fmt.Errorf("stack not found")
		}
		statusString := aws.StringValue(resp.Stacks[0].StackStatus)
		switch statusString {
		case cloudformation.StackStatusUpdateComplete:
			return nil
		case cloudformation.StackStatusUpdateRollbackComplete, cloudformation.StackStatusUpdateRollbackFailed:
			return fmt.Errorf("Stack status: %s : %s", statusString, aws.StringValue(resp.Stacks[0].StackStatusReason))
		case cloudformation.StackStatusUpdateInProgress, cloudformation.StackStatusUpdateCompleteCleanupInProgress, cloudformation.StackStatusUpdateRollbackInProgress, cloudformation.StackStatusUpdateRollbackCompleteCleanupInProgress:
			time.Sleep(stackPollInterval)
			continue
		default:
			return fmt.Errorf("unexpected stack status: %s", statusString)
		}
	}
}

// DeleteStack asks the engine to destroy the stack and everything it
// manages. The stack must exist.
func (c *Provisioner) DeleteStack(cfSvc CRUDService) (*cloudformation.DeleteStackOutput, error) {
	exists, err := StackExists(cfSvc, c.stackName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check stack existence")
	}
	if !exists {
		return nil, errors.Wrapf(ErrStackNotFound, "stack %s", c.stackName)
	}

	resp, err := cfSvc.DeleteStack(&cloudformation.DeleteStackInput{
		StackName: aws.String(c.stackName),
	})
	if err != nil {
		return nil, errors.Wrap(err, "stack deletion failed")
	}
	return resp, nil
}

func (c *Provisioner) DeleteStackAndWait(cfSvc CRUDService) error {
	if _, err := c.DeleteStack(cfSvc); err != nil {
		return err
	}

	req := cloudformation.DescribeStacksInput{
		StackName: aws.String(c.stackName),
	}

	for {
		resp, err := cfSvc.DescribeStacks(&req)
		if err != nil {
			// DescribeStacks by name stops resolving once deletion finishes.
			if isStackNotFoundError(err) {
				return nil
			}
			return err
		}
		if len(resp.Stacks) == 0 {
			return nil
		}
		statusString := aws.StringValue(resp.Stacks[0].StackStatus)
		switch statusString {
		case cloudformation.StackStatusDeleteComplete:
			return nil
		case cloudformation.StackStatusDeleteFailed:
			return fmt.Errorf("Stack deletion failed: %s", aws.StringValue(resp.Stacks[0].StackStatusReason))
		case cloudformation.StackStatusDeleteInProgress:
			time.Sleep(stackPollInterval)
			continue
		default:
			return fmt.Errorf("unexpected stack status: %s", statusString)
		}
	}
}

// Validate has CloudFormation check the template, uploading it first when
// it is too large to validate inline.
func (c *Provisioner) Validate(stackBody string) (string, error) {
	validateInput := cloudformation.ValidateTemplateInput{}

	templateURL, err := c.uploadTemplateIfNecessary(s3.New(c.session), stackBody)
	if err != nil {
		return "", err
	}
	if templateURL != nil {
		validateInput.TemplateURL = templateURL
	} else {
		validateInput.TemplateBody = aws.String(stackBody)
	}

	cfSvc := cloudformation.New(c.session)
	validationReport, err := cfSvc.ValidateTemplate(&validateInput)
	if err != nil {
		return "", errors.Wrap(err, "invalid cloudformation stack")
	}

	return validationReport.String(), nil
}

// EstimateTemplateCost returns the URL of the AWS cost calculator
// preloaded with the template's resources.
func (c *Provisioner) EstimateTemplateCost(cfSvc CRUDService, stackBody string) (*cloudformation.EstimateTemplateCostOutput, error) {
	estimateInput := cloudformation.EstimateTemplateCostInput{
		TemplateBody: aws.String(stackBody),
		Parameters:   c.parameters(),
	}

	estimate, err := cfSvc.EstimateTemplateCost(&estimateInput)
	if err != nil {
		return nil, errors.Wrap(err, "cost estimation failed")
	}

	return estimate, nil
}

func isNoUpdateError(err error) bool {
	if aerr, ok := err.(awserr.Error); ok {
		return aerr.Code() == "ValidationError" && strings.Contains(aerr.Message(), "No updates are to be performed")
	}
	return false
}
