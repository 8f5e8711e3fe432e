package texttemplate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"text/template"

	"github.com/Masterminds/sprig"
)

func ParseFile(filename string, funcs template.FuncMap) (*template.Template, error) {
	raw, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return Parse(filename, string(raw), funcs)
}

func Parse(name string, raw string, funcs template.FuncMap) (*template.Template, error) {
	funcs2 := template.FuncMap{
		"checkSizeLessThan": func(size int, content string) (string, error) {
			if len(content) >= size {
				return "", fmt.Errorf("Content length exceeds maximum size %d", size)
			}
			return content, nil
		},
		"toJSON": func(v interface{}) (string, error) {
			data, err := json.Marshal(v)
			return string(data), err
		},
	}

	return template.New(name).Funcs(sprig.HermeticTxtFuncMap()).Funcs(funcs).Funcs(funcs2).Parse(raw)
}

func GetBytesBuffer(filename string, data interface{}) (*bytes.Buffer, error) {
	tmpl, err := ParseFile(filename, nil)
	if err != nil {
		return nil, err
	}

	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, data); err != nil {
		return nil, err
	}
	return &buff, nil
}

func GetString(filename string, data interface{}) (string, error) {
	buf, err := GetBytesBuffer(filename, data)
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

func GetStringFromRawString(raw string, data interface{}) (string, error) {
	tmpl, err := Parse("template", raw, nil)
	if err != nil {
		return "", err
	}

	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, data); err != nil {
		return "", err
	}
	return buff.String(), nil
}
