package deployer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/sjson"

	"github.com/piontas/cfndeployer/cfntemplate"
	"github.com/piontas/cfndeployer/config"
	"github.com/piontas/cfndeployer/filereader/jsontemplate"
	"github.com/piontas/cfndeployer/filereader/texttemplate"
)

// RenderOptions tunes how the stack template is rendered before being
// submitted or exported.
type RenderOptions struct {
	PrettyPrint bool

	// Sets are Path=Value overrides applied to the rendered JSON document,
	// e.g. "Parameters.VpcName.Default=prod-vpc".
	Sets []string
}

// RenderTemplate renders the configured template file. The file is run
// through the text templating engine with the config as data, so plain
// JSON or YAML documents pass through untouched. YAML documents are
// normalized to the JSON form CloudFormation receives.
func (d *Deployer) RenderTemplate(opts RenderOptions) (string, error) {
	return RenderTemplateFile(d.cfg.TemplateFile, d.cfg, opts)
}

func RenderTemplateFile(filename string, cfg *config.Config, opts RenderOptions) (string, error) {
	rendered, err := texttemplate.GetString(filename, cfg)
	if err != nil {
		return "", errors.Wrapf(err, "failed to render template %s", filename)
	}

	body := strings.TrimSpace(rendered)
	if !strings.HasPrefix(body, "{") {
		t, err := cfntemplate.Parse([]byte(rendered))
		if err != nil {
			return "", err
		}
		jsonBody, err := t.JSON()
		if err != nil {
			return "", err
		}
		body = string(jsonBody)
	}

	body, err = applySets(body, opts.Sets)
	if err != nil {
		return "", err
	}

	formatted, err := jsontemplate.Format([]byte(body), opts.PrettyPrint)
	if err != nil {
		return "", err
	}
	return string(formatted), nil
}

// applySets applies Path=Value overrides to a JSON document. Values that
// are themselves valid JSON are set raw, so booleans, numbers and objects
// survive; everything else is set as a string.
func applySets(body string, sets []string) (string, error) {
	for _, set := range sets {
		parts := strings.SplitN(set, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return "", fmt.Errorf("invalid --set %q: expected Path=Value", set)
		}
		path, value := parts[0], parts[1]

		var err error
		if json.Valid([]byte(value)) {
			body, err = sjson.SetRaw(body, path, value)
		} else {
			body, err = sjson.Set(body, path, value)
		}
		if err != nil {
			return "", errors.Wrapf(err, "failed to apply --set %q", set)
		}
	}
	return body, nil
}
