package cfntemplate

import (
	"fmt"
	"regexp"

	"github.com/pkg/errors"
)

func compilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(pattern)
}

// ResolvedResource returns a copy of the named resource with Ref intrinsics
// pointing at template parameters substituted by their effective values.
// Refs to pseudo parameters or other resources are left untouched for the
// provisioning engine to resolve.
func (t *Template) ResolvedResource(logicalID string, values map[string]string) (*Resource, error) {
	r, ok := t.Resources[logicalID]
	if !ok {
		return nil, fmt.Errorf("resource %s is not declared by the template", logicalID)
	}

	resolved, err := t.ResolveParameters(values)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve parameters for resource %s", logicalID)
	}

	out := Resource{
		Type:       r.Type,
		Condition:  r.Condition,
		DependsOn:  r.DependsOn,
		Metadata:   r.Metadata,
		Properties: map[string]interface{}{},
	}
	for k, v := range r.Properties {
		out.Properties[k] = substituteRefs(v, resolved)
	}
	return &out, nil
}

// Tags extracts the Tags property of a resource as a list of Tag pairs.
func (r *Resource) Tags() []Tag {
	raw, ok := r.Properties["Tags"].([]interface{})
	if !ok {
		return nil
	}

	var tags []Tag
	for _, entry := range raw {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		key, _ := m["Key"].(string)
		tags = append(tags, Tag{Key: key, Value: m["Value"]})
	}
	return tags
}

// TagValue returns the value of the named tag, or "" when absent.
func (r *Resource) TagValue(key string) string {
	for _, tag := range r.Tags() {
		if tag.Key == key {
			return stringValue(tag.Value)
		}
	}
	return ""
}

func substituteRefs(v interface{}, params map[string]string) interface{} {
	switch node := v.(type) {
	case map[string]interface{}:
		if len(node) == 1 {
			if ref, ok := node["Ref"].(string); ok {
				if value, ok := params[ref]; ok {
					return value
				}
				return node
			}
		}
		out := map[string]interface{}{}
		for k, child := range node {
			out[k] = substituteRefs(child, params)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(node))
		for i, child := range node {
			out[i] = substituteRefs(child, params)
		}
		return out
	default:
		return v
	}
}

// normalizeTemplate rewrites the nested interface{} trees produced by the
// yaml parser, which keys maps by interface{}, into the string-keyed form
// the json encoder requires.
func normalizeTemplate(t *Template) {
	for name, r := range t.Resources {
		r.Properties = normalizeMap(r.Properties)
		r.Metadata = normalizeMap(r.Metadata)
		t.Resources[name] = r
	}
	t.Mappings = normalizeMap(t.Mappings)
	t.Conditions = normalizeMap(t.Conditions)
	t.Outputs = normalizeMap(t.Outputs)
}

func normalizeMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := map[string]interface{}{}
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch node := v.(type) {
	case map[interface{}]interface{}:
		out := map[string]interface{}{}
		for k, child := range node {
			out[fmt.Sprintf("%v", k)] = normalizeValue(child)
		}
		return out
	case map[string]interface{}:
		return normalizeMap(node)
	case []interface{}:
		out := make([]interface{}, len(node))
		for i, child := range node {
			out[i] = normalizeValue(child)
		}
		return out
	default:
		return v
	}
}
