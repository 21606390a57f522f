package diff

import (
	"slices"
	"testing"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name             string
		observed         []string
		desired          []string
		wantOnlyObserved []string
		wantBoth         []string
		wantOnlyDesired  []string
	}{
		{
			name:             "disjoint sets",
			observed:         []string{"a", "b"},
			desired:          []string{"c", "d"},
			wantOnlyObserved: []string{"a", "b"},
			wantBoth:         nil,
			wantOnlyDesired:  []string{"c", "d"},
		},
		{
			name:             "overlapping sets",
			observed:         []string{"a", "b"},
			desired:          []string{"b", "c"},
			wantOnlyObserved: []string{"a"},
			wantBoth:         []string{"b"},
			wantOnlyDesired:  []string{"c"},
		},
		{
			name:             "identical sets",
			observed:         []string{"x", "y"},
			desired:          []string{"y", "x"},
			wantOnlyObserved: nil,
			wantBoth:         []string{"x", "y"},
			wantOnlyDesired:  nil,
		},
		{
			name:             "empty observed",
			observed:         nil,
			desired:          []string{"a"},
			wantOnlyObserved: nil,
			wantBoth:         nil,
			wantOnlyDesired:  []string{"a"},
		},
		{
			name:             "empty desired",
			observed:         []string{"a"},
			desired:          nil,
			wantOnlyObserved: []string{"a"},
			wantBoth:         nil,
			wantOnlyDesired:  nil,
		},
		{
			name:             "both empty",
			observed:         nil,
			desired:          nil,
			wantOnlyObserved: nil,
			wantBoth:         nil,
			wantOnlyDesired:  nil,
		},
		{
			name:             "unsorted input comes back sorted",
			observed:         []string{"d", "b", "a"},
			desired:          []string{"c", "b", "e"},
			wantOnlyObserved: []string{"a", "d"},
			wantBoth:         []string{"b"},
			wantOnlyDesired:  []string{"c", "e"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			onlyObserved, both, onlyDesired := Reconcile(tt.observed, tt.desired)

			if !slices.Equal(onlyObserved, tt.wantOnlyObserved) {
				t.Errorf("onlyObserved = %v, want %v", onlyObserved, tt.wantOnlyObserved)
			}
			if !slices.Equal(both, tt.wantBoth) {
				t.Errorf("both = %v, want %v", both, tt.wantBoth)
			}
			if !slices.Equal(onlyDesired, tt.wantOnlyDesired) {
				t.Errorf("onlyDesired = %v, want %v", onlyDesired, tt.wantOnlyDesired)
			}
		})
	}
}

// The three partitions must be disjoint and their union must equal the
// union of the inputs.
func TestReconcilePartitionProperties(t *testing.T) {
	observed := []string{"a", "b", "c", "e", "g"}
	desired := []string{"b", "d", "e", "f"}

	onlyObserved, both, onlyDesired := Reconcile(observed, desired)

	seen := make(map[string]int)
	for _, part := range [][]string{onlyObserved, both, onlyDesired} {
		for _, k := range part {
			seen[k]++
		}
	}
	for k, n := range seen {
		if n != 1 {
			t.Errorf("key %q appears in %d partitions", k, n)
		}
	}

	union := make(map[string]bool)
	for _, k := range append(append([]string{}, observed...), desired...) {
		union[k] = true
	}
	if len(seen) != len(union) {
		t.Errorf("partition union has %d keys, input union has %d", len(seen), len(union))
	}
	for k := range union {
		if seen[k] != 1 {
			t.Errorf("key %q missing from partitions", k)
		}
	}
}
