package jsontemplate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/piontas/cfndeployer/filereader/texttemplate"
)

// GetBytes renders the template file with data and returns the result as
// syntax-checked, minified or pretty-printed JSON.
func GetBytes(filename string, data interface{}, prettyPrint bool) ([]byte, error) {
	rendered, err := texttemplate.GetString(filename, data)
	if err != nil {
		return nil, err
	}

	return Format([]byte(rendered), prettyPrint)
}

// Format syntax-checks raw JSON, pointing at the offending region on error,
// and minifies or pretty-prints it.
func Format(raw []byte, prettyPrint bool) ([]byte, error) {
	var jsonHolder map[string]interface{}
	if err := json.Unmarshal(raw, &jsonHolder); err != nil {
		if syntaxError, ok := err.(*json.SyntaxError); ok {
			contextString := getContextString(raw, int(syntaxError.Offset), 3)
			return nil, fmt.Errorf("%v:\njson syntax error (offset=%d), in this region:\n-------\n%s\n-------\n", err, syntaxError.Offset, contextString)
		}
		return nil, err
	}

	var buff bytes.Buffer
	if prettyPrint {
		if err := json.Indent(&buff, raw, "", "  "); err != nil {
			return nil, err
		}
	} else {
		if err := json.Compact(&buff, raw); err != nil {
			return nil, err
		}
	}

	return buff.Bytes(), nil
}

func GetString(filename string, data interface{}, prettyPrint bool) (string, error) {
	bytes, err := GetBytes(filename, data, prettyPrint)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

func getContextString(buf []byte, offset, lineCount int) string {
	// Clamp the offset for errors reported at the very end of the document.
	bufsize := len(buf)
	if offset >= bufsize {
		if bufsize > 0 {
			offset = bufsize - 1
		} else {
			offset = 0
		}
	}

	linesSeen := 0
	var leftLimit int
	for leftLimit = offset; leftLimit > 0 && linesSeen <= lineCount; leftLimit-- {
		if buf[leftLimit] == '\n' {
			linesSeen++
		}
	}

	linesSeen = 0
	var rightLimit int
	for rightLimit = offset + 1; rightLimit < len(buf) && linesSeen <= lineCount; rightLimit++ {
		if buf[rightLimit] == '\n' {
			linesSeen++
		}
	}

	return string(buf[leftLimit:rightLimit])
}
