package handlers

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/lootlist/internal/frontend/telnet"
	"github.com/cory-johannsen/lootlist/internal/game/loot"
)

type inputLine struct {
	text    string
	escaped bool
}

// fakeTerminal replays scripted input and records everything written.
type fakeTerminal struct {
	input   []inputLine
	out     strings.Builder
	prompts int
}

func (f *fakeTerminal) Write(data []byte) error {
	f.out.Write(data)
	return nil
}

func (f *fakeTerminal) WritePrompt(prompt string) error {
	f.prompts++
	f.out.WriteString(prompt)
	return nil
}

func (f *fakeTerminal) ReadInput() (string, bool, error) {
	if len(f.input) == 0 {
		return "", false, io.EOF
	}
	next := f.input[0]
	f.input = f.input[1:]
	return next.text, next.escaped, nil
}

func lines(texts ...string) []inputLine {
	out := make([]inputLine, len(texts))
	for i, s := range texts {
		out[i] = inputLine{text: s}
	}
	return out
}

func sampleRequest() loot.PickRequest {
	keys := loot.DefaultHotkeys()
	return loot.PickRequest{
		Title: loot.PopupTitle,
		Intro: loot.IntroText(12),
		Options: []string{
			"{{y|[ ]}} bronze dagger {{K||}} {{C|$}}{{G|4}}",
			"{{y|[X]}} copper nugget",
			"{{c|~}} water",
		},
		Icons:           []loot.Icon{{Glyph: '/', Color: "w"}, {Glyph: '*', Color: "W"}, {}},
		DefaultSelected: 1,
		Buttons: []loot.Button{
			{Text: loot.ToggleAllLabel(false, keys.ToggleAll), Hotkey: keys.ToggleAll, Code: loot.ChoiceToggleAll},
			{Text: loot.SortLabel(loot.SortValue, keys.Sort), Hotkey: keys.Sort, Code: loot.ChoiceSort},
			{Text: loot.PickupLabel(loot.PickupManual, keys.Pickup), Hotkey: keys.Pickup, Code: loot.ChoicePickup},
		},
		AllowEscape: true,
	}
}

func TestParseChoice(t *testing.T) {
	req := sampleRequest()
	keys := loot.DefaultHotkeys()
	tests := []struct {
		name    string
		line    string
		escaped bool
		want    int
		ok      bool
	}{
		{"first row", "1", false, 0, true},
		{"last row", "3", false, 2, true},
		{"padded", "  2 ", false, 1, true},
		{"zero", "0", false, 0, false},
		{"past end", "4", false, 0, false},
		{"toggle all", keys.ToggleAll, false, loot.ChoiceToggleAll, true},
		{"sort upper", strings.ToUpper(keys.Sort), false, loot.ChoiceSort, true},
		{"pickup", keys.Pickup, false, loot.ChoicePickup, true},
		{"cancel key", "q", false, loot.ChoiceCancel, true},
		{"escape", "", true, loot.ChoiceCancel, true},
		{"escape with text", "2", true, loot.ChoiceCancel, true},
		{"empty picks default", "", false, 1, true},
		{"garbage", "xyz", false, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseChoice(req, tt.line, tt.escaped)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseChoice_EscapeNotAllowed(t *testing.T) {
	req := sampleRequest()
	req.AllowEscape = false
	_, ok := ParseChoice(req, "q", false)
	assert.False(t, ok)
	_, ok = ParseChoice(req, "", true)
	assert.False(t, ok)
}

func TestTelnetPresenter_RenderPlain(t *testing.T) {
	p := NewTelnetPresenter(&fakeTerminal{}, false, zap.NewNop())
	out := p.Render(sampleRequest())

	assert.NotContains(t, out, "{{")
	assert.NotContains(t, out, "\033[")
	assert.Contains(t, out, "Lootable Items\r\n")
	assert.Contains(t, out, "Selected weight: 12#\r\n")
	assert.Contains(t, out, "  1) / [ ] bronze dagger | $4\r\n")
	assert.Contains(t, out, "> 2) * [X] copper nugget\r\n")
	assert.Contains(t, out, "  3) ~ water\r\n")
	assert.Contains(t, out, "[t] Select All")
	assert.NotContains(t, strings.ReplaceAll(out, "\r\n", ""), "\n")
}

func TestTelnetPresenter_RenderColor(t *testing.T) {
	p := NewTelnetPresenter(&fakeTerminal{}, true, zap.NewNop())
	out := p.Render(sampleRequest())
	assert.Contains(t, out, telnet.BrightCyan+"$")
	assert.NotContains(t, out, "{{")
	assert.Contains(t, telnet.StripANSI(out), "> 2) * [X] copper nugget")
}

func TestTelnetPresenter_PickOption(t *testing.T) {
	term := &fakeTerminal{input: lines("3")}
	p := NewTelnetPresenter(term, false, zap.NewNop())

	got, err := p.PickOption(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Contains(t, term.out.String(), "Choose [1-3, t, s, p, q]> ")
}

func TestTelnetPresenter_RepromptsOnInvalidInput(t *testing.T) {
	term := &fakeTerminal{input: lines("9", "bogus", "s")}
	p := NewTelnetPresenter(term, false, zap.NewNop())

	got, err := p.PickOption(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, loot.ChoiceSort, got)
	assert.Equal(t, 3, term.prompts)
	assert.Equal(t, 2, strings.Count(term.out.String(), "Choose a listed number or key."))
}

func TestTelnetPresenter_Escape(t *testing.T) {
	term := &fakeTerminal{input: []inputLine{{escaped: true}}}
	p := NewTelnetPresenter(term, false, zap.NewNop())

	got, err := p.PickOption(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, loot.ChoiceCancel, got)
}

func TestTelnetPresenter_ReadError(t *testing.T) {
	p := NewTelnetPresenter(&fakeTerminal{}, false, zap.NewNop())
	_, err := p.PickOption(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, io.EOF))
}

func TestTelnetPresenter_CancelledContext(t *testing.T) {
	term := &fakeTerminal{input: lines("1")}
	p := NewTelnetPresenter(term, false, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.PickOption(ctx, sampleRequest())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, term.input, 1, "no input consumed after cancellation")
}

func TestTelnetPresenter_DrivesZonePopup(t *testing.T) {
	keys := loot.DefaultHotkeys()
	term := &fakeTerminal{input: lines(keys.Sort, "1", "q")}
	p := NewTelnetPresenter(term, false, zap.NewNop())

	zp := loot.NewZonePopup(p, zap.NewNop())
	options := []loot.InventoryItem{
		{Index: 0, Name: "copper nugget", Value: 10, Weight: 1, Known: true},
		{Index: 1, Name: "iron anvil", Value: 2, Weight: 200, Known: true},
	}
	sess := zp.Show(options, nil)

	var got []loot.Action
	for a := range sess.All(context.Background()) {
		got = append(got, a)
	}
	require.NoError(t, sess.Err())
	require.Len(t, got, 2)
	assert.Equal(t, loot.ActionSort, got[0].Type)
	assert.Equal(t, loot.Action{Index: 1, Type: loot.ActionTurnOn}, got[1])
	assert.Equal(t, loot.SortWeight, zp.CurrentSortType)
}

func TestPropertyParseChoiceNumbersMapToRows(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 40).Draw(t, "rows")
		req := loot.PickRequest{Options: make([]string, n), AllowEscape: true}
		pick := rapid.IntRange(1, n).Draw(t, "pick")
		got, ok := ParseChoice(req, strings.Repeat(" ", rapid.IntRange(0, 3).Draw(t, "pad"))+strconv.Itoa(pick), false)
		if !ok || got != pick-1 {
			t.Fatalf("line %d: got (%d, %v)", pick, got, ok)
		}
	})
}
