package eval

import "testing"

func TestRecallAtK(t *testing.T) {
	got := []Key{{Text: "a"}, {Text: "b"}, {Text: "c"}}
	expected := []Key{{Text: "b"}, {Text: "d"}}

	if r := RecallAtK(got, expected, 3); r != 0.5 {
		t.Fatalf("expected 0.5, got %v", r)
	}
	if r := RecallAtK(got, expected, 1); r != 0.0 {
		t.Fatalf("expected 0.0 at k=1, got %v", r)
	}
	if r := RecallAtK(got, nil, 3); r != 1.0 {
		t.Fatalf("empty expectation should be 1.0, got %v", r)
	}
}

func TestMRR(t *testing.T) {
	got := []Key{{Text: "a"}, {Text: "b"}, {Text: "c"}}

	if m := MRR(got, []Key{{Text: "a"}}); m != 1.0 {
		t.Fatalf("expected 1.0, got %v", m)
	}
	if m := MRR(got, []Key{{Text: "c"}}); m != 1.0/3.0 {
		t.Fatalf("expected 1/3, got %v", m)
	}
	if m := MRR(got, []Key{{Text: "zz"}}); m != 0.0 {
		t.Fatalf("expected 0.0, got %v", m)
	}
}
