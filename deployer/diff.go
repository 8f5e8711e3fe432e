package deployer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/aryann/difflib"
	"github.com/mgutz/ansi"
)

// Diff renders the configured template and compares it against what the
// engine currently holds for the stack. context limits output to that many
// unchanged lines around each change; negative means the whole document.
func (d *Deployer) Diff(stackBody string, context int) (string, error) {
	deployed, err := d.DeployedTemplate()
	if err != nil {
		return "", err
	}

	return diffJSON(deployed, stackBody, context)
}

func diffJSON(current, desired string, context int) (string, error) {
	var currentBytes bytes.Buffer
	if err := json.Indent(&currentBytes, []byte(current), "", "  "); err != nil {
		return "", err
	}

	var desiredBytes bytes.Buffer
	if err := json.Indent(&desiredBytes, []byte(desired), "", "  "); err != nil {
		return "", err
	}

	return diffText(currentBytes.String(), desiredBytes.String(), context)
}

func diffText(current, desired string, context int) (string, error) {
	stackDiffs := difflib.Diff(strings.Split(current, "\n"), strings.Split(desired, "\n"))
	stackDiffOutputs := []string{}
	if context >= 0 {
		distances := calculateDistances(stackDiffs)
		omitting := false
		for i, r := range stackDiffs {
			if distances[i] > context {
				if !omitting {
					stackDiffOutputs = append(stackDiffOutputs, "...\n")
					omitting = true
				}
			} else {
				omitting = false
				stackDiffOutputs = append(stackDiffOutputs, sprintDiffRecord(r))
			}
		}
	} else {
		for _, r := range stackDiffs {
			stackDiffOutputs = append(stackDiffOutputs, sprintDiffRecord(r))
		}
	}
	return strings.Join(stackDiffOutputs, ""), nil
}

// Calculate distance of every diff-line to the closest change
func calculateDistances(diffs []difflib.DiffRecord) map[int]int {
	distances := map[int]int{}

	// Iterate forwards through diffs, set 'distance' based on closest 'change' before this line
	change := -1
	for i, diff := range diffs {
		if diff.Delta != difflib.Common {
			change = i
		}
		distance := math.MaxInt32
		if change != -1 {
			distance = i - change
		}
		distances[i] = distance
	}

	// Iterate backwards through diffs, reduce 'distance' based on closest 'change' after this line
	change = -1
	for i := len(diffs) - 1; i >= 0; i-- {
		diff := diffs[i]
		if diff.Delta != difflib.Common {
			change = i
		}
		if change != -1 {
			distance := change - i
			if distance < distances[i] {
				distances[i] = distance
			}
		}
	}

	return distances
}

func sprintDiffRecord(diff difflib.DiffRecord) string {
	text := diff.Payload

	var res string
	switch diff.Delta {
	case difflib.RightOnly:
		res = fmt.Sprintf("%s\n", ansi.Color("+ "+text, "green"))
	case difflib.LeftOnly:
		res = fmt.Sprintf("%s\n", ansi.Color("- "+text, "red"))
	case difflib.Common:
		res = fmt.Sprintf("%s\n", "  "+text)
	}
	return res
}
