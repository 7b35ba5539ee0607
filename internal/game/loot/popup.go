package loot

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"go.uber.org/zap"
)

// Sentinel codes returned by Presenter.PickOption for the non-row choices.
const (
	ChoiceCancel    = -1
	ChoiceToggleAll = -2
	ChoiceSort      = -3
	ChoicePickup    = -4
)

// PopupTitle is the title shown on every loot list cycle.
const PopupTitle = "Lootable Items"

var (
	// ErrCancelled may be returned by a Presenter instead of ChoiceCancel.
	ErrCancelled = errors.New("loot: popup cancelled")
	// ErrNoCandidates is reported by a session opened with no candidates.
	ErrNoCandidates = errors.New("loot: no candidates to show")
)

// Button is an extra labelled command shown below the option rows.
type Button struct {
	Text   string
	Hotkey string
	Code   int
}

// PickRequest is everything a Presenter needs to draw one cycle of the popup.
type PickRequest struct {
	Title           string
	Intro           string
	Options         []string
	Icons           []Icon
	DefaultSelected int
	Buttons         []Button
	AllowEscape     bool
}

// Presenter shows a modal single-choice menu and blocks until the player
// answers.
//
// PickOption returns an index into req.Options, the Code of one of
// req.Buttons, or ChoiceCancel.
type Presenter interface {
	PickOption(ctx context.Context, req PickRequest) (int, error)
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc func(ctx context.Context, req PickRequest) (int, error)

// PickOption calls f.
func (f PresenterFunc) PickOption(ctx context.Context, req PickRequest) (int, error) {
	return f(ctx, req)
}

// ActionType tags an event emitted by a popup session.
type ActionType int

const (
	// ActionTurnOn marks the candidate for auto-pickup.
	ActionTurnOn ActionType = iota
	// ActionTurnOff clears the candidate's auto-pickup mark.
	ActionTurnOff
	// ActionSort reports that the sort mode changed.
	ActionSort
	// ActionTravel asks the caller to travel to the candidate. It is always
	// the last event of a session.
	ActionTravel
)

func (t ActionType) String() string {
	switch t {
	case ActionTurnOn:
		return "turn_on"
	case ActionTurnOff:
		return "turn_off"
	case ActionSort:
		return "sort"
	case ActionTravel:
		return "travel"
	default:
		return fmt.Sprintf("action(%d)", int(t))
	}
}

// Action is one event emitted by a popup session. Index is the candidate's
// identity index; it is zero for ActionSort.
type Action struct {
	Index int
	Type  ActionType
}

// Hotkeys names the keys bound to the three popup controls.
type Hotkeys struct {
	ToggleAll string
	Sort      string
	Pickup    string
}

// DefaultHotkeys returns the bindings used when none are configured.
func DefaultHotkeys() Hotkeys {
	return Hotkeys{ToggleAll: "t", Sort: "s", Pickup: "p"}
}

// PopupOption configures a ZonePopup.
type PopupOption func(*ZonePopup)

// WithHotkeys overrides the control hotkeys.
func WithHotkeys(h Hotkeys) PopupOption {
	return func(zp *ZonePopup) { zp.hotkeys = h }
}

// ZonePopup drives the loot list menu. The two mode fields are read at the
// start of every cycle and updated live; the caller seeds them before Show
// and reads them back afterwards.
//
// A ZonePopup is not safe for concurrent use; at most one Session should be
// active at a time.
type ZonePopup struct {
	CurrentSortType   SortType
	CurrentPickupType PickupType

	presenter Presenter
	logger    *zap.Logger
	hotkeys   Hotkeys
}

// NewZonePopup creates a ZonePopup with default modes.
//
// Precondition: presenter and logger must be non-nil.
func NewZonePopup(presenter Presenter, logger *zap.Logger, opts ...PopupOption) *ZonePopup {
	zp := &ZonePopup{
		CurrentSortType:   DefaultSortType(),
		CurrentPickupType: DefaultPickupType(),
		presenter:         presenter,
		logger:            logger,
		hotkeys:           DefaultHotkeys(),
	}
	for _, opt := range opts {
		opt(zp)
	}
	return zp
}

// Show opens a session over options with the given identity indices
// preselected. Nothing is presented until the first call to Next.
//
// Precondition: options carry dense, unique indices.
// Postcondition: Returns a non-nil Session. Empty or malformed options yield
// a closed session whose Err reports the cause. Out-of-range or repeated
// initial indices are ignored.
func (zp *ZonePopup) Show(options []InventoryItem, initial []int) *Session {
	s := &Session{
		popup:    zp,
		options:  slices.Clone(options),
		selected: make(map[int]bool, len(initial)),
	}
	if len(options) == 0 {
		s.closeWith(ErrNoCandidates)
		return s
	}
	if err := ValidateIndices(options); err != nil {
		s.closeWith(err)
		return s
	}

	byIndex := make([]InventoryItem, len(options))
	for _, it := range options {
		byIndex[it.Index] = it
	}
	for _, idx := range initial {
		if idx < 0 || idx >= len(options) || s.selected[idx] {
			continue
		}
		s.selected[idx] = true
		s.weight += byIndex[idx].Weight
	}
	s.view = SortDescending(s.options, zp.CurrentSortType)
	return s
}

// sweep is an in-progress select-all or deselect-all pass over a fixed
// snapshot of the sorted view.
type sweep struct {
	view      []InventoryItem
	pos       int
	selecting bool
}

// Session is one invocation of the popup. It produces events lazily: each
// call to Next either drains pending work or presents the menu again.
type Session struct {
	popup    *ZonePopup
	options  []InventoryItem
	view     []InventoryItem
	selected map[int]bool
	weight   float64
	cursor   int
	sweep    *sweep
	closed   bool
	err      error
}

// Next returns the next event, presenting the menu as many times as needed
// to obtain one. The boolean is false once the session is closed.
//
// Postcondition: After an ActionTravel event, Next always returns false.
func (s *Session) Next(ctx context.Context) (Action, bool) {
	for {
		if a, ok := s.advanceSweep(); ok {
			return a, true
		}
		if s.closed {
			return Action{}, false
		}
		if a, ok := s.cycle(ctx); ok {
			return a, true
		}
	}
}

// All returns an iterator over the remaining events. The loop body runs to
// completion before the menu is presented again. Breaking out of the loop
// closes the session.
func (s *Session) All(ctx context.Context) iter.Seq[Action] {
	return func(yield func(Action) bool) {
		for {
			a, ok := s.Next(ctx)
			if !ok {
				return
			}
			if !yield(a) {
				s.Close()
				return
			}
		}
	}
}

// Close ends the session without emitting further events.
func (s *Session) Close() {
	s.sweep = nil
	s.closed = true
}

// IsClosed reports whether the session has ended.
func (s *Session) IsClosed() bool {
	return s.closed
}

// Err returns the error that ended the session, if any. Player cancellation
// is not an error.
func (s *Session) Err() error {
	return s.err
}

// SelectedWeight returns the running total weight of selected candidates.
func (s *Session) SelectedWeight() float64 {
	return s.weight
}

// Selected returns the selected identity indices in ascending order.
func (s *Session) Selected() []int {
	out := make([]int, 0, len(s.selected))
	for idx := range s.selected {
		out = append(out, idx)
	}
	slices.Sort(out)
	return out
}

// View returns a copy of the current sorted view.
func (s *Session) View() []InventoryItem {
	return slices.Clone(s.view)
}

// Cursor returns the default cursor row for the next cycle.
func (s *Session) Cursor() int {
	return s.cursor
}

func (s *Session) closeWith(err error) {
	s.err = err
	s.Close()
}

func (s *Session) setSelected(it InventoryItem, on bool) {
	if on {
		s.selected[it.Index] = true
		s.weight += it.Weight
		return
	}
	delete(s.selected, it.Index)
	s.weight -= it.Weight
}

func (s *Session) advanceSweep() (Action, bool) {
	sw := s.sweep
	for sw != nil && sw.pos < len(sw.view) {
		it := sw.view[sw.pos]
		sw.pos++
		if s.selected[it.Index] == sw.selecting {
			continue
		}
		s.setSelected(it, sw.selecting)
		if sw.selecting {
			return Action{Index: it.Index, Type: ActionTurnOn}, true
		}
		return Action{Index: it.Index, Type: ActionTurnOff}, true
	}
	s.sweep = nil
	return Action{}, false
}

// request builds the presentation for the current state.
func (s *Session) request() PickRequest {
	zp := s.popup
	labels := make([]string, len(s.view))
	icons := make([]Icon, len(s.view))
	for i, it := range s.view {
		labels[i] = ItemLabel(s.selected[it.Index], it, zp.CurrentSortType)
		icons[i] = it.Icon
	}
	return PickRequest{
		Title:           PopupTitle,
		Intro:           IntroText(s.weight),
		Options:         labels,
		Icons:           icons,
		DefaultSelected: s.cursor,
		Buttons: []Button{
			{Text: ToggleAllLabel(len(s.selected) >= len(s.options), zp.hotkeys.ToggleAll), Hotkey: zp.hotkeys.ToggleAll, Code: ChoiceToggleAll},
			{Text: SortLabel(zp.CurrentSortType, zp.hotkeys.Sort), Hotkey: zp.hotkeys.Sort, Code: ChoiceSort},
			{Text: PickupLabel(zp.CurrentPickupType, zp.hotkeys.Pickup), Hotkey: zp.hotkeys.Pickup, Code: ChoicePickup},
		},
		AllowEscape: true,
	}
}

// cycle presents the menu once and interprets the answer. It returns an
// event when the answer maps to exactly one.
func (s *Session) cycle(ctx context.Context) (Action, bool) {
	zp := s.popup
	if err := ctx.Err(); err != nil {
		s.closeWith(err)
		return Action{}, false
	}

	s.view = SortDescending(s.options, zp.CurrentSortType)
	choice, err := zp.presenter.PickOption(ctx, s.request())
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			s.Close()
		} else {
			s.closeWith(fmt.Errorf("presenting loot list: %w", err))
		}
		return Action{}, false
	}

	switch choice {
	case ChoiceCancel:
		zp.logger.Debug("loot list cancelled")
		s.Close()
		return Action{}, false

	case ChoiceToggleAll:
		s.sweep = &sweep{
			view:      slices.Clone(s.view),
			selecting: len(s.selected) < len(s.options),
		}
		return Action{}, false

	case ChoiceSort:
		zp.CurrentSortType = NextSortType(zp.CurrentSortType)
		s.view = SortDescending(s.options, zp.CurrentSortType)
		s.cursor = 0
		zp.logger.Debug("loot list sort changed", zap.Stringer("sort", zp.CurrentSortType))
		return Action{Type: ActionSort}, true

	case ChoicePickup:
		zp.CurrentPickupType = NextPickupType(zp.CurrentPickupType)
		zp.logger.Debug("loot list pickup mode changed", zap.Stringer("pickup", zp.CurrentPickupType))
		return Action{}, false
	}

	if choice < 0 || choice >= len(s.view) {
		zp.logger.Warn("loot list choice out of range",
			zap.Int("choice", choice),
			zap.Int("options", len(s.view)),
		)
		return Action{}, false
	}

	it := s.view[choice]
	if it.IsPool {
		s.Close()
		return Action{Index: it.Index, Type: ActionTravel}, true
	}

	on := !s.selected[it.Index]
	s.setSelected(it, on)
	s.cursor = choice
	if on {
		return Action{Index: it.Index, Type: ActionTurnOn}, true
	}
	return Action{Index: it.Index, Type: ActionTurnOff}, true
}
