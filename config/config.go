package config

import (
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/imdario/mergo"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/piontas/cfndeployer/cfnresource"
	"github.com/piontas/cfndeployer/cfnstack"
	"github.com/piontas/cfndeployer/logger"
	"github.com/piontas/cfndeployer/model"
)

// Config is the deployer configuration for a single stack, usually read
// from cfndeployer.yaml.
type Config struct {
	StackName        string `yaml:"stackName"`
	model.Region     `yaml:",inline"`
	TemplateFile     string            `yaml:"templateFile"`
	StackPolicyFile  string            `yaml:"stackPolicyFile"`
	S3URI            string            `yaml:"s3URI"`
	KMSKeyARN        string            `yaml:"kmsKeyArn"`
	OnFailure        string            `yaml:"onFailure"`
	DisableRollback  bool              `yaml:"disableRollback"`
	TimeoutInMinutes int64             `yaml:"timeoutInMinutes"`
	Capabilities     []string          `yaml:"capabilities"`
	Parameters       map[string]string `yaml:"parameters"`
	Tags             map[string]string `yaml:"tags"`
	RequiredVersion  string            `yaml:"requiredVersion"`

	// Environments are partial overlays merged over the base config when
	// the deployer runs with --environment.
	Environments map[string]Environment `yaml:"environments"`
}

// Environment overrides a subset of the base config for one deployment
// target. Empty fields inherit the base values; parameter and tag maps are
// merged key-wise.
type Environment struct {
	StackName    string            `yaml:"stackName"`
	Region       string            `yaml:"region"`
	TemplateFile string            `yaml:"templateFile"`
	S3URI        string            `yaml:"s3URI"`
	KMSKeyARN    string            `yaml:"kmsKeyArn"`
	Parameters   map[string]string `yaml:"parameters"`
	Tags         map[string]string `yaml:"tags"`
}

// InitialConfig carries the values scaffolded into a fresh config file by
// the init command.
type InitialConfig struct {
	StackName string
	Region    model.Region
	S3URI     string
}

func newDefaultConfig() *Config {
	return &Config{
		Region:       model.RegionForName("eu-west-1"),
		TemplateFile: "stack.json",
	}
}

func ConfigFromFile(filename string, environment string) (*Config, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	c, err := ConfigFromBytes(data, environment)
	if err != nil {
		return nil, errors.Wrapf(err, "file %s", filename)
	}

	return c, nil
}

// ConfigFromBytes is split out for unit tests, which store configs as
// hardcoded strings.
func ConfigFromBytes(data []byte, environment string) (*Config, error) {
	c := newDefaultConfig()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	if environment != "" {
		merged, err := c.mergeEnvironment(environment)
		if err != nil {
			return nil, err
		}
		c = merged
	}

	if err := c.valid(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return c, nil
}

func (c *Config) mergeEnvironment(name string) (*Config, error) {
	env, ok := c.Environments[name]
	if !ok {
		return nil, fmt.Errorf("environment %s is not declared in the config", name)
	}

	overlay := Config{
		StackName:    env.StackName,
		Region:       model.RegionForName(env.Region),
		TemplateFile: env.TemplateFile,
		S3URI:        env.S3URI,
		KMSKeyARN:    env.KMSKeyARN,
		Parameters:   env.Parameters,
		Tags:         env.Tags,
	}

	merged := *c
	merged.Environments = nil
	if err := mergo.Merge(&merged, overlay, mergo.WithOverride); err != nil {
		return nil, errors.Wrapf(err, "failed to merge environment %s", name)
	}
	return &merged, nil
}

func (c *Config) valid() error {
	if c.StackName == "" {
		return errors.New("stackName is required")
	}
	if err := cfnresource.ValidateStackName(c.StackName); err != nil {
		return err
	}
	if c.Region.IsEmpty() {
		return errors.New("region is required")
	}
	if c.TemplateFile == "" {
		return errors.New("templateFile is required")
	}

	switch c.OnFailure {
	case "", "DO_NOTHING", "ROLLBACK", "DELETE":
	default:
		return fmt.Errorf("onFailure(=%s) must be one of DO_NOTHING, ROLLBACK or DELETE", c.OnFailure)
	}

	if c.TimeoutInMinutes < 0 {
		return fmt.Errorf("timeoutInMinutes(=%d) must not be negative", c.TimeoutInMinutes)
	}

	if c.S3URI != "" {
		if _, err := cfnstack.S3URIFromString(c.S3URI); err != nil {
			return err
		}
	}

	if c.KMSKeyARN != "" && !c.Region.SupportsKMS() {
		return fmt.Errorf("customer managed KMS keys are not supported in %s", c.Region)
	}

	if c.RequiredVersion != "" {
		if _, err := semver.NewConstraint(c.RequiredVersion); err != nil {
			return errors.Wrapf(err, "requiredVersion(=%s) is not a valid semver constraint", c.RequiredVersion)
		}
	}

	return nil
}

// ValidateVersion checks the running deployer version against the
// requiredVersion constraint. Unreleased builds carry a non-semver version
// and skip the check with a warning.
func (c *Config) ValidateVersion(version string) error {
	if c.RequiredVersion == "" {
		return nil
	}

	constraint, err := semver.NewConstraint(c.RequiredVersion)
	if err != nil {
		return errors.Wrapf(err, "requiredVersion(=%s) is not a valid semver constraint", c.RequiredVersion)
	}

	v, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		logger.Warnf("skipping requiredVersion check: running version %q is not a release build", version)
		return nil
	}

	if !constraint.Check(v) {
		return fmt.Errorf("running version %s does not satisfy the configured requiredVersion %s", version, c.RequiredVersion)
	}
	return nil
}
