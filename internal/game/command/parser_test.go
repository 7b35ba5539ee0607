package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		verb string
		args []string
	}{
		{"", "", nil},
		{" \t ", "", nil},
		{"zll", "zll", nil},
		{"ZLL", "zll", nil},
		{"  east\t3 ", "east", []string{"3"}},
		{"lootlist Copper  Nugget", "lootlist", []string{"Copper", "Nugget"}},
	}
	for _, tt := range tests {
		in := Parse(tt.line)
		assert.Equal(t, tt.verb, in.Verb, "%q", tt.line)
		assert.Equal(t, tt.args, in.Args, "%q", tt.line)
	}
}

func TestInput_Arg(t *testing.T) {
	in := Parse("travel North now")
	assert.Equal(t, "north", in.Arg(0))
	assert.Equal(t, "now", in.Arg(1))
	assert.Empty(t, in.Arg(2))
	assert.Empty(t, in.Arg(-1))
}

func TestInput_Repeat(t *testing.T) {
	n, err := Parse("e").Repeat()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = Parse("e 4").Repeat()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	for _, bad := range []string{"e 0", "e -2", "e far", "e 41"} {
		_, err := Parse(bad).Repeat()
		assert.Error(t, err, bad)
	}
}

// Property: the verb is the lowercased first word and the arguments are the
// rest, for any mix of spaces and tabs.
func TestPropertyParseSplitsWords(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOfN(rapid.StringMatching(`[A-Za-z0-9]{1,8}`), 1, 6).Draw(t, "words")
		sep := rapid.SampledFrom([]string{" ", "  ", "\t", " \t "}).Draw(t, "sep")
		in := Parse(sep + strings.Join(words, sep) + sep)

		if in.Verb != strings.ToLower(words[0]) {
			t.Fatalf("verb %q from %q", in.Verb, words)
		}
		if len(in.Args) != len(words)-1 {
			t.Fatalf("args %q from %q", in.Args, words)
		}
		for i, a := range in.Args {
			if a != words[i+1] {
				t.Fatalf("arg %d = %q, want %q", i, a, words[i+1])
			}
		}
	})
}
