package htmlsanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRichKeepsSafeMarkup(t *testing.T) {
	in := "<p><strong>平安</strong> 与 <em>喜乐</em></p>"
	assert.Equal(t, in, Rich(in))
}

func TestRichRemovesScript(t *testing.T) {
	assert.Equal(t, "<p>Hello</p>", Rich("<p>Hello</p><script>alert('xss')</script>"))
}

func TestRichStripsJavascriptHref(t *testing.T) {
	out := Rich(`<a href="javascript:alert(1)">x</a>`)
	assert.NotContains(t, out, "javascript:")
}

func TestRichKeepsSafeLinks(t *testing.T) {
	assert.Contains(t, Rich(`<a href="https://example.com">Link</a>`), "https://example.com")
}

func TestPlainDropsAllTags(t *testing.T) {
	assert.Equal(t, "周三 晚上查经", Plain("<b>周三</b> 晚上查经<script>x()</script>"))
	assert.Equal(t, "", Plain(""))
}
