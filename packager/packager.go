package packager

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/piontas/cfndeployer/cfntemplate"
	"github.com/piontas/cfndeployer/logger"
	"github.com/piontas/cfndeployer/s3uploader"
)

// exportableProperties maps resource types to the property that may point
// at a local template file. Local paths are uploaded to S3 and replaced
// with the object's HTTPS URL before the document is exported.
var exportableProperties = map[string]string{
	"AWS::CloudFormation::Stack": "TemplateURL",
}

// Packager uploads artifacts referenced by a template and writes an
// exported copy of the document pointing at the uploaded objects.
type Packager struct {
	uploader *s3uploader.Uploader
	basedir  string
}

func New(uploader *s3uploader.Uploader, basedir string) *Packager {
	return &Packager{
		uploader: uploader,
		basedir:  basedir,
	}
}

// Export parses the template and rewrites local artifact references into
// S3 URLs, uploading each artifact with checksum dedup. Nested stack
// templates are exported recursively so their own references resolve too.
func (p *Packager) Export(templateFile string) (*cfntemplate.Template, error) {
	t, err := cfntemplate.ParseFile(templateFile)
	if err != nil {
		return nil, err
	}

	for name, r := range t.Resources {
		property, ok := exportableProperties[r.Type]
		if !ok {
			continue
		}

		path, ok := r.Properties[property].(string)
		if !ok {
			continue
		}

		local := p.resolvePath(path)
		if _, err := os.Stat(local); err != nil {
			// Not a local file; assume it is already a URL and leave it alone.
			continue
		}

		url, err := p.exportNested(local)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to upload artifact %s referenced by %s property of %s resource", path, property, name)
		}

		r.Properties[property] = url
		t.Resources[name] = r
	}

	return t, nil
}

// exportNested exports a referenced template and uploads the result,
// returning the path-style HTTPS URL CloudFormation accepts.
func (p *Packager) exportNested(templateFile string) (string, error) {
	nested, err := p.Export(templateFile)
	if err != nil {
		return "", err
	}

	data, err := nested.JSON()
	if err != nil {
		return "", err
	}

	tmp, err := ioutil.TempFile("", "cfndeployer-export-")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	checksum, err := s3uploader.FileChecksum(tmp.Name())
	if err != nil {
		return "", err
	}

	remotePath := checksum + ".template"
	if _, err := p.uploader.Upload(tmp.Name(), remotePath); err != nil {
		return "", err
	}

	return p.uploader.HTTPSURL(remotePath), nil
}

// Package exports the template and writes the resulting document to
// outputFile as YAML, or JSON when useJSON is set. Parent directories are
// created as needed.
func (p *Packager) Package(templateFile string, outputFile string, useJSON bool) error {
	exported, err := p.Export(templateFile)
	if err != nil {
		return err
	}

	var data []byte
	if useJSON {
		data, err = exported.PrettyJSON()
	} else {
		data, err = exported.YAML()
	}
	if err != nil {
		return err
	}

	if dir := filepath.Dir(outputFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create output directory %s", dir)
		}
	}

	if err := ioutil.WriteFile(outputFile, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", outputFile)
	}

	logger.Infof("Packaged %s to %s", templateFile, outputFile)
	return nil
}

func (p *Packager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.basedir, path)
}
