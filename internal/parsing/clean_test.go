package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text",
			input:    "  Build   services\n\n  in Go  ",
			expected: "Build services\nin Go",
		},
		{
			name:     "paragraphs and lists",
			input:    "<p>About the role</p><ul><li>Python</li><li>Lead a <b>team</b></li></ul>",
			expected: "About the role\n- Python\n- Lead a team",
		},
		{
			name:     "line breaks",
			input:    "First line<br>Second line<br/>Third",
			expected: "First line\nSecond line\nThird",
		},
		{
			name:     "scripts and styles removed",
			input:    "<div>Visible</div><script>alert(1)</script><style>p{}</style>",
			expected: "Visible",
		},
		{
			name:     "comparison is not markup",
			input:    "Salary > 100k",
			expected: "Salary > 100k",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanHTML(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
