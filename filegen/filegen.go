package filegen

import (
	"os"
	"path/filepath"
	"text/template"

	"github.com/pkg/errors"
)

// CreateFileFromTemplate renders fileTemplate with templateOpts and writes
// the result to outputFilePath. The file must not already exist.
func CreateFileFromTemplate(outputFilePath string, templateOpts interface{}, fileTemplate []byte) error {
	tmpl, err := template.New(filepath.Base(outputFilePath)).Parse(string(fileTemplate))
	if err != nil {
		return errors.Wrap(err, "error parsing file template")
	}

	dir := filepath.Dir(outputFilePath)

	if _, err := os.Stat(dir); err != nil && os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "error creating directory")
		}
	}

	out, err := os.OpenFile(outputFilePath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return errors.Wrapf(err, "error opening %s", outputFilePath)
	}
	defer out.Close()
	if err := tmpl.Execute(out, templateOpts); err != nil {
		return errors.Wrap(err, "error exec-ing file template")
	}
	return nil
}
