package textnorm

import "testing"

func TestAssistant(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain passes through", "The risk score is 41%.", "The risk score is 41%."},
		{"bold unwrapped", "The **risk score** is high.", "The risk score is high."},
		{"italic unwrapped", "This is *significant* drift.", "This is significant drift."},
		{"inline code unwrapped", "See `Protocol 6.2` for details.", "See Protocol 6.2 for details."},
		{"heading stripped", "## Assessment\nScore is 41%.", "Assessment\nScore is 41%."},
		{"blockquote stripped", "> The subject stated otherwise.", "The subject stated otherwise."},
		{"bullets normalized", "* first signal\n- second signal", "- first signal\n- second signal"},
		{
			"mixed",
			"### Summary\n**Score**: *41%*\n> note\n* `signal one`",
			"Summary\nScore: 41%\nnote\n- signal one",
		},
		{"surrounding whitespace trimmed", "  plain  ", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Assistant(tt.input); got != tt.want {
				t.Errorf("Assistant(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
