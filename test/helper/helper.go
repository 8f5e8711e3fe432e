package helper

import (
	"io/ioutil"
	"os"
	"path/filepath"
)

// WithTempDir runs fn with a scratch directory that is removed afterwards.
func WithTempDir(fn func(dir string)) {
	dir, err := ioutil.TempDir("", "cfndeployer-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	fn(dir)
}

// WithTempFile writes content to a scratch file and runs fn with its path.
func WithTempFile(content string, fn func(path string)) {
	WithTempDir(func(dir string) {
		path := filepath.Join(dir, "testfile")
		if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
			panic(err)
		}
		fn(path)
	})
}
