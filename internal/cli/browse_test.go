package cli

import "testing"

func TestParseBrowseSelection(t *testing.T) {
	testCases := []struct {
		name          string
		input         string
		allowBack     bool
		expectValid   bool
		expectedKind  browseActionKind
		expectedDepth int
		expectedSize  int64
	}{
		{name: "quit", input: "q", allowBack: true, expectValid: true, expectedKind: browseActionQuit},
		{name: "quit uppercase", input: " Q ", allowBack: true, expectValid: true, expectedKind: browseActionQuit},
		{name: "back", input: "b", allowBack: true, expectValid: true, expectedKind: browseActionBack},
		{name: "back unavailable in browse-only mode", input: "b", allowBack: false, expectValid: false},
		{name: "set depth", input: "d 3", allowBack: true, expectValid: true, expectedKind: browseActionSetDepth, expectedDepth: 3},
		{name: "set size", input: "s 10g", allowBack: true, expectValid: true, expectedKind: browseActionSetSize, expectedSize: 10 << 30},
		{name: "depth without value", input: "d", allowBack: true, expectValid: false},
		{name: "depth with junk value", input: "d many", allowBack: true, expectValid: false},
		{name: "size with bad spec", input: "s 1x", allowBack: true, expectValid: false},
		{name: "empty line", input: "", allowBack: true, expectValid: false},
		{name: "unknown command", input: "frobnicate", allowBack: true, expectValid: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			action, valid := parseBrowseSelection(testCase.input, testCase.allowBack)
			if valid != testCase.expectValid {
				t.Fatalf("expected valid=%t, got %t", testCase.expectValid, valid)
			}
			if !valid {
				return
			}
			if action.kind != testCase.expectedKind {
				t.Fatalf("expected kind %d, got %d", testCase.expectedKind, action.kind)
			}
			if action.treeDepth != testCase.expectedDepth {
				t.Fatalf("expected depth %d, got %d", testCase.expectedDepth, action.treeDepth)
			}
			if action.sizeThreshold != testCase.expectedSize {
				t.Fatalf("expected size %d, got %d", testCase.expectedSize, action.sizeThreshold)
			}
		})
	}
}
