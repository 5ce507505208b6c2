package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name        string
		input       string
		contains    []string
		notContains []string
	}{
		{
			name:     "emphasis",
			input:    "Fixed in **v2.3**",
			contains: []string{"<strong>v2.3</strong>"},
		},
		{
			name:        "script stripped",
			input:       "hello <script>alert(1)</script>",
			contains:    []string{"hello", "raw HTML omitted"},
			notContains: []string{"<script", "</script>"},
		},
		{
			name:     "links get nofollow",
			input:    "see https://example.com/changelog",
			contains: []string{`href="https://example.com/changelog"`, `rel="nofollow`},
		},
		{
			name:     "hard wraps",
			input:    "line one\nline two",
			contains: []string{"<br"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Render(tt.input)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestRenderer_EmptyInput(t *testing.T) {
	out, err := NewRenderer().Render("   ")
	require.NoError(t, err)
	assert.Empty(t, out)
}
