package cfntemplate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/piontas/cfndeployer/cfnresource"
)

// Template models a CloudFormation template document. Parsing and
// re-serializing a template preserves its parameter/resource/tag structure.
type Template struct {
	FormatVersion string                 `json:"AWSTemplateFormatVersion,omitempty" yaml:"AWSTemplateFormatVersion,omitempty"`
	Description   string                 `json:"Description,omitempty" yaml:"Description,omitempty"`
	Parameters    map[string]Parameter   `json:"Parameters,omitempty" yaml:"Parameters,omitempty"`
	Mappings      map[string]interface{} `json:"Mappings,omitempty" yaml:"Mappings,omitempty"`
	Conditions    map[string]interface{} `json:"Conditions,omitempty" yaml:"Conditions,omitempty"`
	Resources     map[string]Resource    `json:"Resources" yaml:"Resources"`
	Outputs       map[string]interface{} `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// Parameter is a template input. Validation of supplied values against
// AllowedPattern/AllowedValues is ultimately performed by CloudFormation at
// submission time; the same checks are available locally via
// ValidateParameters.
type Parameter struct {
	Type                  string        `json:"Type" yaml:"Type"`
	Default               interface{}   `json:"Default,omitempty" yaml:"Default,omitempty"`
	Description           string        `json:"Description,omitempty" yaml:"Description,omitempty"`
	AllowedPattern        string        `json:"AllowedPattern,omitempty" yaml:"AllowedPattern,omitempty"`
	AllowedValues         []interface{} `json:"AllowedValues,omitempty" yaml:"AllowedValues,omitempty"`
	ConstraintDescription string        `json:"ConstraintDescription,omitempty" yaml:"ConstraintDescription,omitempty"`
	MinLength             *int          `json:"MinLength,omitempty" yaml:"MinLength,omitempty"`
	MaxLength             *int          `json:"MaxLength,omitempty" yaml:"MaxLength,omitempty"`
	NoEcho                bool          `json:"NoEcho,omitempty" yaml:"NoEcho,omitempty"`
}

// Resource is a single resource declaration.
type Resource struct {
	Type       string                 `json:"Type" yaml:"Type"`
	Condition  string                 `json:"Condition,omitempty" yaml:"Condition,omitempty"`
	DependsOn  []string               `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
	Metadata   map[string]interface{} `json:"Metadata,omitempty" yaml:"Metadata,omitempty"`
	Properties map[string]interface{} `json:"Properties,omitempty" yaml:"Properties,omitempty"`
}

// Tag is a Key/Value label attached to a resource.
type Tag struct {
	Key   string
	Value interface{}
}

// Parse reads a template from its JSON or YAML serialization.
func Parse(data []byte) (*Template, error) {
	trimmed := bytes.TrimLeftFunc(data, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\r' || r == '\n'
	})

	t := &Template{}
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(data, t); err != nil {
			return nil, errors.Wrap(err, "failed to parse template as json")
		}
		return t, nil
	}

	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, errors.Wrap(err, "failed to parse template as yaml")
	}
	normalizeTemplate(t)
	return t, nil
}

// ParseFile reads a template document from a file.
func ParseFile(filename string) (*Template, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read template file %s", filename)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse template file %s", filename)
	}
	return t, nil
}

// JSON returns the minified JSON serialization of the template.
func (t *Template) JSON() ([]byte, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize template")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PrettyJSON returns the indented JSON serialization of the template.
func (t *Template) PrettyJSON() ([]byte, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize template")
	}
	return data, nil
}

// YAML returns the YAML serialization of the template.
func (t *Template) YAML() ([]byte, error) {
	data, err := yaml.Marshal(t)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize template")
	}
	return data, nil
}

// Validate performs the structural checks CloudFormation would reject the
// document for: missing resources, empty resource types, invalid logical
// ids, and parameter defaults violating their own declared constraints.
func (t *Template) Validate() error {
	if len(t.Resources) == 0 {
		return errors.New("template must declare at least one resource")
	}

	for name, r := range t.Resources {
		if err := cfnresource.ValidateLogicalName(name); err != nil {
			return err
		}
		if r.Type == "" {
			return fmt.Errorf("resource %s has no Type", name)
		}
	}

	for name, p := range t.Parameters {
		if p.Type == "" {
			return fmt.Errorf("parameter %s has no Type", name)
		}
		if p.Default == nil {
			continue
		}
		if err := p.check(name, stringValue(p.Default)); err != nil {
			return errors.Wrapf(err, "default value of parameter %s violates its own constraint", name)
		}
	}

	return nil
}

// ValidateParameters checks supplied parameter values against the declared
// constraints, reporting violations with the parameter's
// ConstraintDescription the way the provisioning engine would.
func (t *Template) ValidateParameters(values map[string]string) error {
	for name, value := range values {
		p, ok := t.Parameters[name]
		if !ok {
			return fmt.Errorf("parameter %s is not declared by the template", name)
		}
		if err := p.check(name, value); err != nil {
			return err
		}
	}
	return nil
}

// ResolveParameters returns the effective parameter values: declared
// defaults overridden by the supplied values. Supplied values are validated
// first; parameters lacking both a default and a supplied value are an
// error.
func (t *Template) ResolveParameters(values map[string]string) (map[string]string, error) {
	if err := t.ValidateParameters(values); err != nil {
		return nil, err
	}

	resolved := map[string]string{}
	for name, p := range t.Parameters {
		if v, ok := values[name]; ok {
			resolved[name] = v
			continue
		}
		if p.Default == nil {
			return nil, fmt.Errorf("parameter %s has no default and no value was supplied", name)
		}
		resolved[name] = stringValue(p.Default)
	}
	return resolved, nil
}

func (p Parameter) check(name, value string) error {
	if p.MinLength != nil && len(value) < *p.MinLength {
		return fmt.Errorf("parameter %s value %q is shorter than the declared MinLength %d", name, value, *p.MinLength)
	}
	if p.MaxLength != nil && len(value) > *p.MaxLength {
		return fmt.Errorf("parameter %s value %q is longer than the declared MaxLength %d", name, value, *p.MaxLength)
	}

	if len(p.AllowedValues) > 0 {
		found := false
		for _, allowed := range p.AllowedValues {
			if stringValue(allowed) == value {
				found = true
				break
			}
		}
		if !found {
			return constraintError(name, value, p.ConstraintDescription, "is not one of the allowed values")
		}
	}

	if p.AllowedPattern != "" {
		matched, err := matchPattern(p.AllowedPattern, value)
		if err != nil {
			return errors.Wrapf(err, "invalid AllowedPattern for parameter %s", name)
		}
		if !matched {
			return constraintError(name, value, p.ConstraintDescription, fmt.Sprintf("does not match the allowed pattern %s", p.AllowedPattern))
		}
	}

	return nil
}

func constraintError(name, value, constraint, fallback string) error {
	if constraint != "" {
		return fmt.Errorf("parameter %s value %q is invalid: %s", name, value, constraint)
	}
	return fmt.Errorf("parameter %s value %q %s", name, value, fallback)
}

func stringValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return fmt.Sprintf("%t", t)
	case float64:
		// JSON numbers decode to float64. Render integral values
		// without the trailing fraction.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func matchPattern(pattern, value string) (bool, error) {
	// CloudFormation matches AllowedPattern against the entire value.
	anchored := pattern
	if !strings.HasPrefix(anchored, "^") {
		anchored = "^(?:" + anchored + ")$"
	}
	re, err := compilePattern(anchored)
	if err != nil {
		return false, err
	}
	return re.MatchString(value), nil
}
