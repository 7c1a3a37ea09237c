package strings_test

import (
	"testing"

	kstrings "github.com/opsdeck/opsdeck/pkg/utils/strings"
)

func TestTrimPrefixAll(t *testing.T) {
	for name, testcase := range map[string]struct {
		s        string
		prefix   string
		expected string
	}{
		"when s does not start with prefix, it returns s as is": {
			s: "hello world", prefix: "unknown: ", expected: "hello world",
		},
		"when s starts with prefix, it trims that": {
			s: "unknown: no such project", prefix: "unknown: ", expected: "no such project",
		},
		"when s starts with repeated prefix, it trims all of them": {
			s: "unknown: unknown: boom", prefix: "unknown: ", expected: "boom",
		},
		"when prefix is empty, it returns s as is": {
			s: "asis", prefix: "", expected: "asis",
		},
	} {
		t.Run(name, func(t *testing.T) {
			actual := kstrings.TrimPrefixAll(testcase.s, testcase.prefix)
			if actual != testcase.expected {
				t.Errorf("unmatch: (actual, expected) = (%s, %s)", actual, testcase.expected)
			}
		})
	}
}
