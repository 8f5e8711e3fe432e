package cfnstack

import (
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piontas/cfndeployer/model"
	"github.com/piontas/cfndeployer/test/helper"
)

func withFixedChangeSetClock(t *testing.T, unix int64) {
	orig := changeSetClock
	changeSetClock = func() int64 { return unix }
	t.Cleanup(func() { changeSetClock = orig })
}

func TestDeploy(t *testing.T) {
	region := model.RegionForName("eu-west-1")
	body := `{"Resources":{"Vpc":{"Type":"AWS::EC2::VPC"}}}`

	t.Run("CreatesChangeSetForNewStack", func(t *testing.T) {
		withFixedChangeSetClock(t, 1136214245)

		cfSvc := &helper.DummyCloudformationService{
			StackStatusQueue: []string{""},
			ChangeSetStatus:  cloudformation.ChangeSetStatusCreateComplete,
		}

		provisioner := NewProvisioner("my-stack", nil, nil, "", "", region, nil)

		cs, err := provisioner.Deploy(cfSvc, nil, body, false)
		require.NoError(t, err)

		assert.Equal(t, cloudformation.ChangeSetTypeCreate, cs.Type)
		assert.Equal(t, "stack-change-set-1136214245", cs.Name)

		input := cfSvc.CreateChangeSetInput
		require.NotNil(t, input)
		assert.Equal(t, "my-stack", aws.StringValue(input.StackName))
		assert.Equal(t, body, aws.StringValue(input.TemplateBody))

		assert.Nil(t, cfSvc.ExecutedChangeSet, "execute=false stops after the change set is ready")
	})

	t.Run("ExecutesCreateTypeChangeSet", func(t *testing.T) {
		withFixedChangeSetClock(t, 1136214245)

		cfSvc := &helper.DummyCloudformationService{
			StackStatusQueue: []string{""},
			StackStatus:      cloudformation.StackStatusCreateComplete,
			ChangeSetStatus:  cloudformation.ChangeSetStatusCreateComplete,
		}

		provisioner := NewProvisioner("my-stack", nil, nil, "", "", region, nil)

		cs, err := provisioner.Deploy(cfSvc, nil, body, true)
		require.NoError(t, err)

		assert.Equal(t, cloudformation.ChangeSetTypeCreate, cs.Type)
		require.NotNil(t, cfSvc.ExecutedChangeSet)
		assert.Equal(t, cs.Name, aws.StringValue(cfSvc.ExecutedChangeSet.ChangeSetName))
	})

	t.Run("ExecutesUpdateTypeChangeSetForExistingStack", func(t *testing.T) {
		withFixedChangeSetClock(t, 1136214245)

		cfSvc := &helper.DummyCloudformationService{
			StackStatusQueue: []string{cloudformation.StackStatusCreateComplete},
			StackStatus:      cloudformation.StackStatusUpdateComplete,
			ChangeSetStatus:  cloudformation.ChangeSetStatusCreateComplete,
		}

		provisioner := NewProvisioner("my-stack", nil, nil, "", "", region, nil)

		cs, err := provisioner.Deploy(cfSvc, nil, body, true)
		require.NoError(t, err)

		assert.Equal(t, cloudformation.ChangeSetTypeUpdate, cs.Type)
		require.NotNil(t, cfSvc.ExecutedChangeSet)
	})

	t.Run("ReportsEmptyChangeSet", func(t *testing.T) {
		withFixedChangeSetClock(t, 1136214245)

		cfSvc := &helper.DummyCloudformationService{
			StackStatusQueue:      []string{cloudformation.StackStatusCreateComplete},
			ChangeSetStatus:       cloudformation.ChangeSetStatusFailed,
			ChangeSetStatusReason: "The submitted information didn't contain changes. Submit different information to create a change set.",
		}

		provisioner := NewProvisioner("my-stack", nil, nil, "", "", region, nil)

		_, err := provisioner.Deploy(cfSvc, nil, body, true)
		require.Error(t, err)
		assert.True(t, IsEmptyChangeSet(err))
		assert.Nil(t, cfSvc.ExecutedChangeSet, "nothing is executed for an empty change set")
	})

	t.Run("ReportsOtherFailureReasons", func(t *testing.T) {
		withFixedChangeSetClock(t, 1136214245)

		cfSvc := &helper.DummyCloudformationService{
			StackStatusQueue:      []string{cloudformation.StackStatusCreateComplete},
			ChangeSetStatus:       cloudformation.ChangeSetStatusFailed,
			ChangeSetStatusReason: "Access denied",
		}

		provisioner := NewProvisioner("my-stack", nil, nil, "", "", region, nil)

		_, err := provisioner.Deploy(cfSvc, nil, body, true)
		require.Error(t, err)
		assert.False(t, IsEmptyChangeSet(err))
		assert.Contains(t, err.Error(), "Access denied")
	})
}
