package target

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		target   string
		expected string
	}{
		{name: "relative file", target: "src/main.keel", expected: "/src/main.keel"},
		{name: "absolute file", target: "/src/main.keel", expected: "/src/main.keel"},
		{name: "unclean path", target: "src/../lib//a.keel", expected: "/lib/a.keel"},
		{name: "current directory", target: ".", expected: "/"},
		{name: "empty", target: "", expected: "/"},
		{name: "file uri", target: "file:///src/main.keel", expected: "/src/main.keel"},
		{name: "other scheme", target: "https://example.com/a.keel", expected: "https://example.com/a.keel"},
		{name: "directory", target: "src/", expected: "/src"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, Normalize(testCase.target))
		})
	}
}
