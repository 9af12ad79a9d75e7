package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "nested inline",
			input:    `<p>Hello <b>world</b></p>`,
			expected: "<p>\n Hello\n <b>\n  world\n </b>\n</p>\n",
		},
		{
			name:     "void elements and attributes",
			input:    `<p><img src="a.jpg" alt="Tom &amp; Jerry"><br></p>`,
			expected: "<p>\n <img src=\"a.jpg\" alt=\"Tom &amp; Jerry\"/>\n <br/>\n</p>\n",
		},
		{
			name:     "text escaping and comments",
			input:    `<div>1 &lt; 2<!-- note --></div>`,
			expected: "<div>\n 1 &lt; 2\n <!-- note -->\n</div>\n",
		},
		{
			name:     "siblings",
			input:    "<p>a</p>\n\n<p>b</p>",
			expected: "<p>\n a\n</p>\n<p>\n b\n</p>\n",
		},
		{
			name:     "preformatted kept as is",
			input:    "<pre>  x\n  y</pre>",
			expected: "<pre>  x\n  y</pre>\n",
		},
		{
			name:     "table row fragment",
			input:    "<tr><td>cell</td></tr>",
			expected: "<tr>\n <td>\n  cell\n </td>\n</tr>\n",
		},
		{
			name:     "table cells",
			input:    "<td>a</td><th>b</th>",
			expected: "<td>\n a\n</td>\n<th>\n b\n</th>\n",
		},
		{
			name:     "noscript keeps markup",
			input:    "<p>a</p><noscript><p>n</p></noscript>",
			expected: "<p>\n a\n</p>\n<noscript>\n <p>\n  n\n </p>\n</noscript>\n",
		},
		{
			name:     "bare text",
			input:    "just text",
			expected: "just text\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Prettify(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPlainText(t *testing.T) {
	text, err := PlainText("<p>Hello\n <b>world</b></p><script>var x;</script><p>again</p>")
	require.NoError(t, err)
	assert.Equal(t, "Hello world again", text)
}

func TestImageSources(t *testing.T) {
	sources, err := ImageSources(`<p><img src="a.jpg"><img alt="none"><img src=" b.png "></p>`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.png"}, sources)
}
