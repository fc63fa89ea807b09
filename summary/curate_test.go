package summary

import "testing"

func TestCurateModelOutput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "fenced json block",
			input: "```json\n{\"title\": \"x\"}\n```",
			want:  `{"title": "x"}`,
		},
		{
			name:  "bare fences",
			input: "```\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "already clean",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "multiline object",
			input: "{\n  \"a\": 1,\n  \"b\": 2\n}",
			want:  `{  "a": 1,  "b": 2}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurateModelOutput(tt.input); got != tt.want {
				t.Errorf("CurateModelOutput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
