package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/lootlist/internal/frontend/telnet"
	"github.com/cory-johannsen/lootlist/internal/game/loot"
)

// CancelKey closes a menu from the keyboard.
const CancelKey = "q"

// LineIO is the line-oriented terminal a TelnetPresenter draws on.
// *telnet.Conn satisfies it.
type LineIO interface {
	Write(data []byte) error
	WritePrompt(prompt string) error
	ReadInput() (line string, escaped bool, err error)
}

// TelnetPresenter draws loot menus as numbered text and reads the answer
// from the player's next line of input.
type TelnetPresenter struct {
	io     LineIO
	color  bool
	logger *zap.Logger
}

// NewTelnetPresenter creates a presenter bound to io.
//
// Precondition: io and logger must be non-nil.
func NewTelnetPresenter(io LineIO, color bool, logger *zap.Logger) *TelnetPresenter {
	return &TelnetPresenter{io: io, color: color, logger: logger}
}

// PickOption implements loot.Presenter.
//
// Postcondition: Returns an index into req.Options, a button Code, or
// loot.ChoiceCancel. Unrecognized input re-draws the prompt. ctx is checked
// before every read; a read already in progress is bounded by the
// connection's read timeout.
func (p *TelnetPresenter) PickOption(ctx context.Context, req loot.PickRequest) (int, error) {
	if err := p.io.Write([]byte(p.Render(req))); err != nil {
		return loot.ChoiceCancel, fmt.Errorf("drawing menu: %w", err)
	}
	for {
		if err := ctx.Err(); err != nil {
			return loot.ChoiceCancel, err
		}
		if err := p.io.WritePrompt(p.prompt(req)); err != nil {
			return loot.ChoiceCancel, fmt.Errorf("writing prompt: %w", err)
		}
		line, escaped, err := p.io.ReadInput()
		if err != nil {
			return loot.ChoiceCancel, fmt.Errorf("reading choice: %w", err)
		}
		choice, ok := ParseChoice(req, line, escaped)
		if ok {
			return choice, nil
		}
		p.logger.Debug("unrecognized menu input", zap.String("input", line))
		if err := p.io.Write([]byte(telnet.Colorize(telnet.Red, "Choose a listed number or key.") + "\r\n")); err != nil {
			return loot.ChoiceCancel, fmt.Errorf("writing hint: %w", err)
		}
	}
}

// ParseChoice maps one line of input onto req. ok is false when the line
// names nothing in the menu.
//
// Postcondition: Numbers are 1-based. An empty line picks the default row.
// Escape, or the cancel key, cancels when req.AllowEscape is set.
func ParseChoice(req loot.PickRequest, line string, escaped bool) (choice int, ok bool) {
	line = strings.TrimSpace(line)
	if escaped || strings.EqualFold(line, CancelKey) {
		if req.AllowEscape {
			return loot.ChoiceCancel, true
		}
		return 0, false
	}
	if line == "" {
		if req.DefaultSelected >= 0 && req.DefaultSelected < len(req.Options) {
			return req.DefaultSelected, true
		}
		return 0, false
	}
	if n, err := strconv.Atoi(line); err == nil {
		if n >= 1 && n <= len(req.Options) {
			return n - 1, true
		}
		return 0, false
	}
	for _, b := range req.Buttons {
		if strings.EqualFold(line, b.Hotkey) {
			return b.Code, true
		}
	}
	return 0, false
}

// Render formats req as Telnet text.
func (p *TelnetPresenter) Render(req loot.PickRequest) string {
	var b strings.Builder
	b.WriteString("\r\n")
	if req.Title != "" {
		b.WriteString(telnet.Paint(p.color, telnet.BrightYellow, req.Title))
		b.WriteString("\r\n")
	}
	if req.Intro != "" {
		b.WriteString(telnet.NewlinesToCRLF(telnet.RenderMarkup(req.Intro, p.color)))
	}
	width := len(strconv.Itoa(len(req.Options)))
	for i, opt := range req.Options {
		cursor := " "
		if i == req.DefaultSelected {
			cursor = ">"
		}
		fmt.Fprintf(&b, "%s %*d) ", cursor, width, i+1)
		if i < len(req.Icons) && req.Icons[i].Glyph != 0 {
			icon := req.Icons[i]
			b.WriteString(telnet.RenderMarkup(fmt.Sprintf("{{%s|%c}} ", icon.Color, icon.Glyph), p.color))
		}
		b.WriteString(telnet.RenderMarkup(opt, p.color))
		b.WriteString("\r\n")
	}
	if len(req.Buttons) > 0 {
		b.WriteString("\r\n")
		labels := make([]string, len(req.Buttons))
		for i, btn := range req.Buttons {
			labels[i] = telnet.RenderMarkup(btn.Text, p.color)
		}
		b.WriteString(strings.Join(labels, "  "))
		b.WriteString("\r\n")
	}
	return b.String()
}

func (p *TelnetPresenter) prompt(req loot.PickRequest) string {
	parts := make([]string, 0, 3)
	if len(req.Options) > 0 {
		parts = append(parts, fmt.Sprintf("1-%d", len(req.Options)))
	}
	for _, btn := range req.Buttons {
		parts = append(parts, btn.Hotkey)
	}
	if req.AllowEscape {
		parts = append(parts, CancelKey)
	}
	return telnet.Paint(p.color, telnet.BrightWhite, "Choose ["+strings.Join(parts, ", ")+"]> ")
}
