package diff

import "testing"

func TestDurationSeconds(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{
			name:  "two weeks",
			input: "2w",
			want:  1209600,
		},
		{
			name:  "one day",
			input: "1d",
			want:  86400,
		},
		{
			name:  "ninety seconds",
			input: "90s",
			want:  90,
		},
		{
			name:  "infinite sentinel",
			input: "infinite",
			want:  0,
		},
		{
			name:  "infinite uppercase",
			input: "INFINITE",
			want:  0,
		},
		{
			name:  "inf shorthand",
			input: "INF",
			want:  0,
		},
		{
			name:  "server reported zero",
			input: "0s",
			want:  0,
		},
		{
			name:  "server reported compound form",
			input: "8760h0m0s",
			want:  8760 * 3600,
		},
		{
			name:  "compound shard duration",
			input: "168h0m0s",
			want:  604800,
		},
		{
			name:  "mixed units sum",
			input: "1d12h",
			want:  86400 + 12*3600,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "unknown unit",
			input:   "3y",
			wantErr: true,
		},
		{
			name:    "missing unit",
			input:   "42",
			wantErr: true,
		},
		{
			name:    "unit without value",
			input:   "w",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DurationSeconds(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("DurationSeconds(%q) expected error, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("DurationSeconds(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("DurationSeconds(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

// Equivalent spellings of the same length must normalize to the same
// count regardless of formatting.
func TestDurationSecondsEquivalentForms(t *testing.T) {
	pairs := [][2]string{
		{"52w", "8736h"},
		{"1w", "168h0m0s"},
		{"7d", "168h"},
		{"infinite", "0s"},
	}

	for _, pair := range pairs {
		a, err := DurationSeconds(pair[0])
		if err != nil {
			t.Fatalf("DurationSeconds(%q) error: %v", pair[0], err)
		}
		b, err := DurationSeconds(pair[1])
		if err != nil {
			t.Fatalf("DurationSeconds(%q) error: %v", pair[1], err)
		}
		if a != b {
			t.Errorf("DurationSeconds(%q) = %d, DurationSeconds(%q) = %d, want equal", pair[0], a, pair[1], b)
		}
	}
}
