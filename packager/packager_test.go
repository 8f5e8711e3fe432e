package packager

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piontas/cfndeployer/cfntemplate"
	"github.com/piontas/cfndeployer/model"
	"github.com/piontas/cfndeployer/s3uploader"
	"github.com/piontas/cfndeployer/test/helper"
)

const nestedTemplate = `{
  "Resources": {
    "Vpc": {
      "Type": "AWS::EC2::VPC",
      "Properties": {"CidrBlock": "10.0.0.0/20"}
    }
  }
}`

func writeFile(t *testing.T, path string, content string) {
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
}

func TestExport(t *testing.T) {
	t.Run("RewritesLocalNestedStackReferences", func(t *testing.T) {
		helper.WithTempDir(func(dir string) {
			writeFile(t, filepath.Join(dir, "nested.json"), nestedTemplate)
			writeFile(t, filepath.Join(dir, "parent.json"), `{
  "Resources": {
    "Network": {
      "Type": "AWS::CloudFormation::Stack",
      "Properties": {"TemplateURL": "nested.json"}
    }
  }
}`)

			s3Svc := &helper.DummyS3Service{}
			uploader := s3uploader.New(s3Svc, "examplebucket", model.RegionForName("eu-west-1"), "exports", "", false)
			packager := New(uploader, dir)

			exported, err := packager.Export(filepath.Join(dir, "parent.json"))
			require.NoError(t, err)

			url, ok := exported.Resources["Network"].Properties["TemplateURL"].(string)
			require.True(t, ok)
			assert.True(t, strings.HasPrefix(url, "https://s3-eu-west-1.amazonaws.com/examplebucket/exports/"), "got %s", url)
			assert.True(t, strings.HasSuffix(url, ".template"), "got %s", url)

			require.Len(t, s3Svc.PutInputs, 1)

			// The uploaded object is the exported nested template.
			key := strings.TrimPrefix(url, "https://s3-eu-west-1.amazonaws.com/examplebucket/")
			require.Contains(t, s3Svc.Objects, key)
			uploaded, err := cfntemplate.Parse(s3Svc.Objects[key])
			require.NoError(t, err)
			assert.Contains(t, uploaded.Resources, "Vpc")
		})
	})

	t.Run("LeavesRemoteReferencesAlone", func(t *testing.T) {
		helper.WithTempDir(func(dir string) {
			writeFile(t, filepath.Join(dir, "parent.json"), `{
  "Resources": {
    "Network": {
      "Type": "AWS::CloudFormation::Stack",
      "Properties": {"TemplateURL": "https://s3.amazonaws.com/examplebucket/nested.template"}
    }
  }
}`)

			s3Svc := &helper.DummyS3Service{}
			uploader := s3uploader.New(s3Svc, "examplebucket", model.RegionForName("eu-west-1"), "", "", false)
			packager := New(uploader, dir)

			exported, err := packager.Export(filepath.Join(dir, "parent.json"))
			require.NoError(t, err)

			assert.Equal(t,
				"https://s3.amazonaws.com/examplebucket/nested.template",
				exported.Resources["Network"].Properties["TemplateURL"])
			assert.Empty(t, s3Svc.PutInputs)
		})
	})

	t.Run("IgnoresNonExportableResources", func(t *testing.T) {
		helper.WithTempDir(func(dir string) {
			writeFile(t, filepath.Join(dir, "parent.json"), nestedTemplate)

			packager := New(nil, dir)

			exported, err := packager.Export(filepath.Join(dir, "parent.json"))
			require.NoError(t, err)
			assert.Contains(t, exported.Resources, "Vpc")
		})
	})
}

func TestPackage(t *testing.T) {
	t.Run("WritesYAMLByDefault", func(t *testing.T) {
		helper.WithTempDir(func(dir string) {
			writeFile(t, filepath.Join(dir, "parent.json"), nestedTemplate)
			outputFile := filepath.Join(dir, "out", "packaged.yaml")

			packager := New(nil, dir)
			require.NoError(t, packager.Package(filepath.Join(dir, "parent.json"), outputFile, false))

			data, err := ioutil.ReadFile(outputFile)
			require.NoError(t, err)

			packaged, err := cfntemplate.Parse(data)
			require.NoError(t, err)
			assert.Contains(t, packaged.Resources, "Vpc")
			assert.NotEqual(t, '{', data[0], "the default output format is yaml")
		})
	})

	t.Run("WritesJSONWhenRequested", func(t *testing.T) {
		helper.WithTempDir(func(dir string) {
			writeFile(t, filepath.Join(dir, "parent.json"), nestedTemplate)
			outputFile := filepath.Join(dir, "packaged.json")

			packager := New(nil, dir)
			require.NoError(t, packager.Package(filepath.Join(dir, "parent.json"), outputFile, true))

			data, err := ioutil.ReadFile(outputFile)
			require.NoError(t, err)
			assert.Equal(t, byte('{'), data[0])
		})
	})
}
