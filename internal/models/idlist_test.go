package models

import "testing"

func TestParseIDList(t *testing.T) {
	cases := []struct {
		input    string
		expected []uint
	}{
		{"", nil},
		{"1", []uint{1}},
		{"1,2,3", []uint{1, 2, 3}},
		{"1, 2, 3", []uint{1, 2, 3}},
		{"1,,3", []uint{1, 3}},
		{"1,abc,3", []uint{1, 3}},
	}

	for _, tc := range cases {
		got := ParseIDList(tc.input)
		if len(got) != len(tc.expected) {
			t.Errorf("ParseIDList(%q) = %v, expected %v", tc.input, got, tc.expected)
			continue
		}
		for i := range got {
			if got[i] != tc.expected[i] {
				t.Errorf("ParseIDList(%q)[%d] = %d, expected %d", tc.input, i, got[i], tc.expected[i])
			}
		}
	}
}

func TestJoinIDList(t *testing.T) {
	if got := JoinIDList(nil); got != "" {
		t.Errorf("JoinIDList(nil) = %q, expected empty", got)
	}
	if got := JoinIDList([]uint{7}); got != "7" {
		t.Errorf("JoinIDList([7]) = %q, expected %q", got, "7")
	}
	if got := JoinIDList([]uint{1, 2, 3}); got != "1,2,3" {
		t.Errorf("JoinIDList([1 2 3]) = %q, expected %q", got, "1,2,3")
	}
}

func TestAppendID(t *testing.T) {
	if got := AppendID("", 5); got != "5" {
		t.Errorf("AppendID(\"\", 5) = %q, expected %q", got, "5")
	}
	if got := AppendID("1,2", 3); got != "1,2,3" {
		t.Errorf("AppendID = %q, expected %q", got, "1,2,3")
	}
	// Appending an existing id is a no-op
	if got := AppendID("1,2,3", 2); got != "1,2,3" {
		t.Errorf("AppendID with existing id = %q, expected unchanged", got)
	}
}

func TestContainsID(t *testing.T) {
	if !ContainsID("1,2,3", 2) {
		t.Error("ContainsID should find 2 in 1,2,3")
	}
	if ContainsID("1,2,3", 4) {
		t.Error("ContainsID should not find 4 in 1,2,3")
	}
	if ContainsID("", 1) {
		t.Error("ContainsID on empty list should be false")
	}
}
