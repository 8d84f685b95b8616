package api

import "testing"

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "json fence",
			input: "```json\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "bare fence",
			input: "```\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "no fence",
			input: "  {\"a\":1}  ",
			want:  `{"a":1}`,
		},
		{
			name:  "fence with surrounding prose",
			input: "Here you go:\n```json\n{\"a\":1}\n```\nEnjoy!",
			want:  `{"a":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.input); got != tt.want {
				t.Errorf("StripFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("short", 500); got != "short" {
		t.Errorf("Excerpt = %q", got)
	}
	long := make([]byte, 600)
	for i := range long {
		long[i] = 'x'
	}
	if got := Excerpt(string(long), 500); len(got) != 500 {
		t.Errorf("Excerpt length = %d, want 500", len(got))
	}
}
