package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Ananya Sharma  ",
			want:  "Ananya Sharma",
		},
		{
			name:  "multiple spaces between words",
			input: "Ananya    Sharma",
			want:  "Ananya Sharma",
		},
		{
			name:  "tabs and newlines",
			input: "Ananya\t\nSharma",
			want:  "Ananya Sharma",
		},
		{
			name:  "control characters dropped",
			input: "Ananya\x00Sharma",
			want:  "AnanyaSharma",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "preserve special characters",
			input: " Dr. O'Brien & Sons ",
			want:  "Dr. O'Brien & Sons",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeMobile(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare digits untouched",
			input: "9830016600",
			want:  "9830016600",
		},
		{
			name:  "spaces and dashes stripped",
			input: "98300 166-00",
			want:  "9830016600",
		},
		{
			name:  "parentheses and dots stripped",
			input: "(983) 001.6600",
			want:  "9830016600",
		},
		{
			name:  "plus sign preserved for validation to reject",
			input: "+919830016600",
			want:  "+919830016600",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeMobile(tt.input); got != tt.want {
				t.Errorf("NormalizeMobile(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
