package cfnresource

import "testing"

func TestValidateLogicalName(t *testing.T) {
	t.Run("WhenValid", func(t *testing.T) {
		if e := ValidateLogicalName("Vpc"); e != nil {
			t.Errorf("expected validation to succeed but failed: %v", e)
		}
	})
	t.Run("WhenPunctuated", func(t *testing.T) {
		if e := ValidateLogicalName("my-vpc"); e == nil {
			t.Error("expected validation to fail but succeeded")
		}
	})
	t.Run("WhenEmpty", func(t *testing.T) {
		if e := ValidateLogicalName(""); e == nil {
			t.Error("expected validation to fail but succeeded")
		}
	})
}

func TestValidateStackName(t *testing.T) {
	t.Run("WhenValid", func(t *testing.T) {
		if e := ValidateStackName("prod-vpc"); e != nil {
			t.Errorf("expected validation to succeed but failed: %v", e)
		}
	})
	t.Run("WhenStartsWithDigit", func(t *testing.T) {
		if e := ValidateStackName("1vpc"); e == nil {
			t.Error("expected validation to fail but succeeded")
		}
	})
	t.Run("WhenUnderscored", func(t *testing.T) {
		if e := ValidateStackName("prod_vpc"); e == nil {
			t.Error("expected validation to fail but succeeded")
		}
	})
}
