package coeqwal

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func keysOf[T any](o ordered[T]) []string {
	keys := make([]string, len(o))
	for i, e := range o {
		keys[i] = e.Key
	}
	return keys
}

func TestOrderedKeyOrder(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"insertion order", `{"b": 1, "a": 2, "c": 3}`, []string{"b", "a", "c"}},
		{"integer keys first", `{"x": 1, "10": 2, "2": 3, "y": 4}`, []string{"2", "10", "x", "y"}},
		{"leading zero is a string key", `{"07": 1, "3": 2}`, []string{"3", "07"}},
		{"negative is a string key", `{"-1": 1, "0": 2}`, []string{"0", "-1"}},
		{"duplicate keeps first position", `{"a": 1, "b": 2, "a": 3}`, []string{"a", "b"}},
		{"empty", `{}`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o ordered[int]
			if err := json.Unmarshal([]byte(tt.in), &o); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, keysOf(o)); diff != "" {
				t.Errorf("key order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOrderedDuplicateLastValueWins(t *testing.T) {
	var o ordered[int]
	if err := json.Unmarshal([]byte(`{"a": 1, "a": 3}`), &o); err != nil {
		t.Fatal(err)
	}
	if len(o) != 1 || o[0].Value != 3 {
		t.Errorf("got %+v, want a=3", o)
	}
}

func TestOrderedRejectsNonObject(t *testing.T) {
	var o ordered[int]
	if err := json.Unmarshal([]byte(`[1, 2]`), &o); err == nil {
		t.Error("array should be rejected")
	}
	if err := json.Unmarshal([]byte(`null`), &o); err != nil || o != nil {
		t.Errorf("null: err=%v o=%v", err, o)
	}
}

func TestFlatten(t *testing.T) {
	var resp tiersResponse
	body := `{"tiers": {
		"a": {"name": "A", "type": "multi_value", "data": {"0": {"value": 2.5}, "x": {"value": 1}, "1": {"value": -3}}},
		"b": {"name": "B", "type": "single_value", "level": 4}
	}}`
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatal(err)
	}
	got := resp.flatten()

	want := scenarioTiers{
		Categories: []string{"A", "B"},
		Units: []tierUnit{
			{Category: "A", Level: 1, Index: 0},
			{Category: "A", Level: 1, Index: 1},
			{Category: "A", Level: 1, Index: 2},
			{Category: "A", Level: 0, Index: 3},
			{Category: "B", Level: 4, Index: 0},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestTierLabel(t *testing.T) {
	tiers := []string{"Tier 1", "Tier 2"}
	for _, tt := range []struct {
		level int
		want  string
	}{{1, "Tier 1"}, {2, "Tier 2"}, {0, ""}, {3, ""}, {-1, ""}} {
		if got := tierLabel(tiers, tt.level); got != tt.want {
			t.Errorf("tierLabel(%d) = %q, want %q", tt.level, got, tt.want)
		}
	}
}
