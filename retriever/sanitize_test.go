package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "hello"},
		{"trim", "  hello \n", "hello"},
		{"tags", "<b>bold</b> and <a href=\"x\">link</a>", "bold and link"},
		{"entities", "Tom &amp; Jerry &lt;3 &quot;quoted&quot; it&#39;s", `Tom & Jerry <3 "quoted" it's`},
		{"encoded tag", "&lt;i&gt;hi&lt;/i&gt;", "hi"},
		{"double encoded", "fish &amp;amp; chips", "fish & chips"},
		{"line breaks", "line one<br>line two", "line oneline two"},
		{"only markup", "<br/> <p></p>", ""},
		{"unknown entity kept", "&nbsp;ok", "&nbsp;ok"},
		{"unicode", "  日本語 👍 ", "日本語 👍"},
		{"encoded comparison", "5 &lt; 6 &amp;&amp; 7 &gt; 3", "5 < 6 && 7 > 3"},
		{"encoded rating", "I rate it &lt; 5 but &gt; 3", "I rate it < 5 but > 3"},
		{"bare comparison", "a < b && c > d", "a < b && c > d"},
		{"comment", "keep<!-- drop <b>me</b> -->this", "keepthis"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeText(tt.input))
		})
	}
}

func TestSanitizeTextIdempotent(t *testing.T) {
	inputs := []string{
		"hello",
		"  <b>x</b>  ",
		"a &lt;b&gt; c",
		"&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;",
		"5 &lt; 6 &amp;&amp; 7 &gt; 3",
		"<<b>>",
		"&amp;#39;",
		"",
		"   ",
	}
	for _, in := range inputs {
		once := SanitizeText(in)
		assert.Equal(t, once, SanitizeText(once), "input %q", in)
	}
}
