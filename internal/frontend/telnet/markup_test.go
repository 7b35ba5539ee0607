package telnet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestRenderMarkup_Color(t *testing.T) {
	got := RenderMarkup("{{G|[2.00 $/#]}} copper nugget", true)
	assert.Equal(t, BrightGreen+"[2.00 $/#]"+Reset+" copper nugget", got)
}

func TestRenderMarkup_Strip(t *testing.T) {
	assert.Equal(t, "[þ] [5#] iron anvil", StripMarkup("{{W|[þ]}} {{w|[5#]}} iron anvil"))
}

func TestRenderMarkup_Nested(t *testing.T) {
	got := RenderMarkup("{{y|a {{R|b}} c}}", true)
	assert.Equal(t, White+"a "+BrightRed+"b"+Reset+White+" c"+Reset, got)
	assert.Equal(t, "a b c", StripMarkup("{{y|a {{R|b}} c}}"))
}

func TestRenderMarkup_LiteralWhenMalformed(t *testing.T) {
	assert.Equal(t, "{{Z|odd}}", StripMarkup("{{Z|odd}}"))
	assert.Equal(t, "{{W|open", StripMarkup("{{W|open"))
	assert.Equal(t, "closing }} alone", StripMarkup("closing }} alone"))
}

func TestColorCode(t *testing.T) {
	assert.Equal(t, Cyan, ColorCode("c"))
	assert.Equal(t, "", ColorCode("cc"))
	assert.Equal(t, "", ColorCode("?"))
}

func TestNewlinesToCRLF(t *testing.T) {
	assert.Equal(t, "a\r\nb\r\nc", NewlinesToCRLF("a\nb\r\nc"))
}

// Property: rendered output without color has no markup delimiters for
// well-formed spans and matches StripANSI of the colored rendering.
func TestPropertyStripMatchesColorRendering(t *testing.T) {
	letters := []string{"k", "K", "r", "G", "w", "W", "c", "y"}
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 5).Draw(t, "spans")
		var src, plain strings.Builder
		for i := 0; i < n; i++ {
			text := rapid.StringMatching(`[a-z0-9 \[\]#$]{0,12}`).Draw(t, "text")
			code := rapid.SampledFrom(letters).Draw(t, "code")
			src.WriteString("{{" + code + "|" + text + "}} ")
			plain.WriteString(text + " ")
		}
		stripped := StripMarkup(src.String())
		assert.Equal(t, plain.String(), stripped)
		assert.Equal(t, stripped, StripANSI(RenderMarkup(src.String(), true)))
	})
}
