package cfnstack

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/pkg/errors"
)

const changeSetNamePrefix = "stack-change-set-"

// changeSetClock is stubbed in tests to get deterministic change set names.
var changeSetClock = func() int64 { return time.Now().Unix() }

// ChangeSet tracks a single created change set until it is executed or
// discarded.
type ChangeSet struct {
	Name string
	Type string
	ID   *string
}

// CreateChangeSet registers a change set for the stack. The change set type
// is CREATE or UPDATE depending on whether the stack already exists, so the
// same deploy flow covers both first-time and subsequent submissions.
func (c *Provisioner) CreateChangeSet(cfSvc CRUDService, s3Svc S3ObjectPutterService, stackBody string) (*ChangeSet, error) {
	changeSetType := cloudformation.ChangeSetTypeUpdate
	exists, err := StackExists(cfSvc, c.stackName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check stack existence")
	}
	if !exists {
		changeSetType = cloudformation.ChangeSetTypeCreate
	}

	templateURL, err := c.uploadTemplateIfNecessary(s3Svc, stackBody)
	if err != nil {
		return nil, err
	}

	changeSetName := fmt.Sprintf("%s%d", changeSetNamePrefix, changeSetClock())

	input := &cloudformation.CreateChangeSetInput{
		StackName:     aws.String(c.stackName),
		ChangeSetName: aws.String(changeSetName),
		ChangeSetType: aws.String(changeSetType),
		Capabilities:  c.capabilityList(),
		Tags:          c.tags(),
		Parameters:    c.parameters(),
	}
	if templateURL != nil {
		input.TemplateURL = templateURL
	} else {
		input.TemplateBody = aws.String(stackBody)
	}

	resp, err := cfSvc.CreateChangeSet(input)
	if err != nil {
		return nil, errors.Wrap(err, "change set creation failed")
	}

	return &ChangeSet{
		Name: changeSetName,
		Type: changeSetType,
		ID:   resp.Id,
	}, nil
}

// WaitForChangeSet polls until the change set is ready to execute. A change
// set that fails because the submitted template contains no changes is
// reported as ErrEmptyChangeSet.
func (c *Provisioner) WaitForChangeSet(cfSvc CRUDService, cs *ChangeSet) error {
	req := cloudformation.DescribeChangeSetInput{
		StackName:     aws.String(c.stackName),
		ChangeSetName: aws.String(cs.Name),
	}

	for {
		resp, err := cfSvc.DescribeChangeSet(&req)
		if err != nil {
			return err
		}
		switch aws.StringValue(resp.Status) {
		case cloudformation.ChangeSetStatusCreateComplete:
			return nil
		case cloudformation.ChangeSetStatusFailed:
			reason := aws.StringValue(resp.StatusReason)
			if isEmptyChangeSetReason(reason) {
				return errors.Wrapf(ErrEmptyChangeSet, "stack %s", c.stackName)
			}
			return fmt.Errorf("change set creation failed: %s", reason)
		case cloudformation.ChangeSetStatusCreatePending, cloudformation.ChangeSetStatusCreateInProgress:
			time.Sleep(stackPollInterval)
			continue
		default:
			return fmt.Errorf("unexpected change set status: %s", aws.StringValue(resp.Status))
		}
	}
}

// ExecuteChangeSet asks the engine to apply the change set and waits for
// the resulting create or update to settle.
func (c *Provisioner) ExecuteChangeSet(cfSvc CRUDService, cs *ChangeSet) error {
	_, err := cfSvc.ExecuteChangeSet(&cloudformation.ExecuteChangeSetInput{
		StackName:     aws.String(c.stackName),
		ChangeSetName: aws.String(cs.Name),
	})
	if err != nil {
		return errors.Wrap(err, "change set execution failed")
	}

	stackID := aws.String(c.stackName)
	if cs.Type == cloudformation.ChangeSetTypeCreate {
		return c.waitUntilCreated(cfSvc, stackID)
	}
	return c.waitUntilUpdated(cfSvc, stackID)
}

// Deploy runs the full change-set flow: create, wait, execute, wait. With
// execute false it stops after the change set is ready for review.
func (c *Provisioner) Deploy(cfSvc CRUDService, s3Svc S3ObjectPutterService, stackBody string, execute bool) (*ChangeSet, error) {
	cs, err := c.CreateChangeSet(cfSvc, s3Svc, stackBody)
	if err != nil {
		return nil, err
	}

	if err := c.WaitForChangeSet(cfSvc, cs); err != nil {
		return nil, err
	}

	if !execute {
		return cs, nil
	}

	if err := c.ExecuteChangeSet(cfSvc, cs); err != nil {
		return cs, errors.Wrapf(err, "failed to create/update the stack %s", c.stackName)
	}
	return cs, nil
}

func isEmptyChangeSetReason(reason string) bool {
	return strings.Contains(reason, "No updates are to be performed") ||
		strings.Contains(reason, "didn't contain changes")
}
