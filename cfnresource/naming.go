package cfnresource

import (
	"fmt"
	"regexp"
)

var (
	logicalNameRE = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	stackNameRE   = regexp.MustCompile(`^[a-zA-Z][-a-zA-Z0-9]*$`)
)

// ValidateLogicalName checks a CloudFormation logical resource ID.
// IDs must be alphanumeric and 255 characters or fewer.
func ValidateLogicalName(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("logical resource id must not be empty")
	}
	if len(name) > 255 {
		return fmt.Errorf("logical resource id(=%s) is %d characters long. It exceeds the AWS limit of 255 characters", name, len(name))
	}
	if !logicalNameRE.MatchString(name) {
		return fmt.Errorf("logical resource id(=%s) must contain only letters and digits", name)
	}
	return nil
}

// ValidateStackName checks a CloudFormation stack name against the AWS
// naming rules: it must start with a letter, contain only letters, digits
// and hyphens, and be 128 characters or fewer.
func ValidateStackName(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("stack name must not be empty")
	}
	if len(name) > 128 {
		return fmt.Errorf("stack name(=%s) is %d characters long. It exceeds the AWS limit of 128 characters", name, len(name))
	}
	if !stackNameRE.MatchString(name) {
		return fmt.Errorf("stack name(=%s) must start with a letter and contain only letters, digits and hyphens", name)
	}
	return nil
}
