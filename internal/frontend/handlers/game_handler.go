// Package handlers provides Telnet session handling and command processing.
package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/lootlist/internal/config"
	"github.com/cory-johannsen/lootlist/internal/frontend/telnet"
	"github.com/cory-johannsen/lootlist/internal/game/command"
	"github.com/cory-johannsen/lootlist/internal/game/inventory"
	"github.com/cory-johannsen/lootlist/internal/game/knowledge"
	"github.com/cory-johannsen/lootlist/internal/game/loot"
	"github.com/cory-johannsen/lootlist/internal/game/lootfinder"
	"github.com/cory-johannsen/lootlist/internal/game/session"
	"github.com/cory-johannsen/lootlist/internal/game/world"
	"github.com/cory-johannsen/lootlist/internal/observability"
	"github.com/cory-johannsen/lootlist/internal/scripting"
	"github.com/cory-johannsen/lootlist/internal/storage/postgres"
)

// AccountStore logs players in, creating the account on first use.
type AccountStore interface {
	Login(ctx context.Context, username, password string) (postgres.Account, bool, error)
}

// StateStore persists loot finder state per character.
type StateStore interface {
	Save(ctx context.Context, characterID int64, modVersion string, payload []byte) error
	Load(ctx context.Context, characterID int64) (postgres.SavedState, error)
}

const welcomeBanner = "\r\n" + telnet.Bold + telnet.BrightCyan +
	"  An Eye For Value" + telnet.Reset + "\r\n" +
	telnet.BrightYellow + "  A salt-crusted zone full of things worth carrying." + telnet.Reset + "\r\n\r\n"

// GameHandler implements telnet.SessionHandler. It logs a player in, places
// them in the start zone and runs their command loop.
type GameHandler struct {
	cfg      config.Config
	items    *inventory.Registry
	world    *world.Manager
	sessions *session.Manager
	scripts  *scripting.Manager
	commands *command.Registry
	accounts AccountStore
	states   StateStore
	logger   *zap.Logger
}

// GameHandlerDeps groups GameHandler's collaborators. Accounts and States
// are optional; without them players are anonymous and state is not saved.
type GameHandlerDeps struct {
	Config   config.Config
	Items    *inventory.Registry
	World    *world.Manager
	Sessions *session.Manager
	Scripts  *scripting.Manager
	Accounts AccountStore
	States   StateStore
	Logger   *zap.Logger
}

// NewGameHandler creates a GameHandler.
//
// Precondition: Items, World, Sessions, Scripts and Logger must be non-nil.
// Postcondition: Returns a handler with the built-in command set, or an
// error naming the missing collaborator.
func NewGameHandler(deps GameHandlerDeps) (*GameHandler, error) {
	switch {
	case deps.Items == nil:
		return nil, errors.New("game handler: item registry is required")
	case deps.World == nil:
		return nil, errors.New("game handler: world manager is required")
	case deps.Sessions == nil:
		return nil, errors.New("game handler: session manager is required")
	case deps.Scripts == nil:
		return nil, errors.New("game handler: script manager is required")
	case deps.Logger == nil:
		return nil, errors.New("game handler: logger is required")
	}
	return &GameHandler{
		cfg:      deps.Config,
		items:    deps.Items,
		world:    deps.World,
		sessions: deps.Sessions,
		scripts:  deps.Scripts,
		commands: command.DefaultRegistry(),
		accounts: deps.Accounts,
		states:   deps.States,
		logger:   observability.Component(deps.Logger, "game"),
	}, nil
}

// HandleSession implements telnet.SessionHandler.
//
// Postcondition: Returns nil on a clean quit. The player's session is always
// removed and, when a state store is configured, their loot finder saved.
func (h *GameHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	if err := conn.Write([]byte(welcomeBanner)); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	name, characterID, err := h.login(ctx, conn)
	if err != nil {
		return err
	}
	if name == "" {
		return nil
	}

	uid := conn.ID
	if uid == "" {
		uid = name
	}
	sess, err := h.enterWorld(ctx, uid, name, characterID)
	if err != nil {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, err.Error()))
		return err
	}
	logger := observability.Player(h.logger, name, uid)
	logger.Info("player entered world", zap.String("zone", sess.ZoneID()), zap.Duration("login_time", time.Since(start)))

	defer func() {
		h.save(context.WithoutCancel(ctx), sess, logger)
		if err := h.sessions.RemovePlayer(uid); err != nil {
			logger.Warn("removing session", zap.Error(err))
		}
		logger.Info("player left", zap.Duration("session_duration", time.Since(start)))
	}()

	presenter := NewTelnetPresenter(conn, h.cfg.Telnet.Color, logger)
	h.flush(conn, sess)
	_ = conn.Write([]byte(h.renderZone(sess)))

	for {
		if err := ctx.Err(); err != nil {
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return err
		}
		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "> ")); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}
		line, err := conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		quit, err := h.dispatch(ctx, conn, sess, presenter, logger, line)
		h.flush(conn, sess)
		if err != nil {
			return err
		}
		if quit {
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
			return nil
		}
	}
}

// login asks for a name and, when accounts are configured, a password.
// An empty name means the player quit at the prompt.
func (h *GameHandler) login(ctx context.Context, conn *telnet.Conn) (string, int64, error) {
	for {
		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "Name: ")); err != nil {
			return "", 0, fmt.Errorf("writing prompt: %w", err)
		}
		name, err := conn.ReadLine()
		if err != nil {
			return "", 0, fmt.Errorf("reading name: %w", err)
		}
		name = strings.TrimSpace(name)
		switch {
		case name == "":
			continue
		case strings.EqualFold(name, "quit"):
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
			return "", 0, nil
		case len(name) < 3 || len(name) > 32 || strings.ContainsAny(name, " \t"):
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Names are 3-32 characters with no spaces."))
			continue
		}
		if h.accounts == nil {
			return name, 0, nil
		}

		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "Password: ")); err != nil {
			return "", 0, fmt.Errorf("writing prompt: %w", err)
		}
		password, err := conn.ReadPassword()
		if err != nil {
			return "", 0, fmt.Errorf("reading password: %w", err)
		}

		acct, created, err := h.accounts.Login(ctx, name, password)
		switch {
		case errors.Is(err, postgres.ErrInvalidCredentials):
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Invalid password."))
			continue
		case errors.Is(err, postgres.ErrBadPassword):
			_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Passwords are 1 to %d characters.", postgres.MaxPasswordBytes))
			continue
		case err != nil:
			h.logger.Error("login error", zap.String("username", name), zap.Error(err))
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "An internal error occurred. Please try again."))
			continue
		}
		if created {
			_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "Welcome, %s. Your account has been created.", acct.Username))
		} else {
			_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "Welcome back, %s.", acct.Username))
		}
		return acct.Username, acct.ID, nil
	}
}

// enterWorld creates the player's session in the start zone, restores saved
// loot finder state and applies the ability setting.
func (h *GameHandler) enterWorld(ctx context.Context, uid, name string, characterID int64) (*session.PlayerSession, error) {
	zone, err := h.world.Start()
	if err != nil {
		return nil, fmt.Errorf("entering world: %w", err)
	}
	var sess *session.PlayerSession
	tracker := knowledge.NewTracker(h.items, knowledge.WithOverride(func(defID string) (bool, bool) {
		if sess == nil {
			return false, false
		}
		return h.scripts.Zone(sess.ZoneID()).ItemKnown(defID)
	}))

	sess, err = h.sessions.AddPlayer(uid, name, characterID, zone, tracker)
	if err != nil {
		return nil, fmt.Errorf("entering world: %w", err)
	}
	h.restore(ctx, sess)
	sess.LootFinder.ToggleAbility(sess.Abilities, h.cfg.Loot.AbilityEnabled)
	return sess, nil
}

// restore loads saved loot finder state. With no saved state the configured
// default modes apply.
func (h *GameHandler) restore(ctx context.Context, sess *session.PlayerSession) {
	lf := sess.LootFinder
	lf.CurrentSortType = h.cfg.Loot.SortType()
	lf.CurrentPickupType = h.cfg.Loot.PickupType()
	if h.states == nil || sess.CharacterID == 0 {
		return
	}
	st, err := h.states.Load(ctx, sess.CharacterID)
	if errors.Is(err, postgres.ErrStateNotFound) {
		return
	}
	if err != nil {
		h.logger.Warn("loading loot finder state", zap.Int64("character_id", sess.CharacterID), zap.Error(err))
		return
	}
	if err := lf.Read(bytes.NewReader(st.Payload), st.ModVersion); err != nil {
		h.logger.Warn("decoding loot finder state",
			zap.Int64("character_id", sess.CharacterID),
			zap.String("mod_version", st.ModVersion),
			zap.Error(err),
		)
	}
}

func (h *GameHandler) save(ctx context.Context, sess *session.PlayerSession, logger *zap.Logger) {
	if h.states == nil || sess.CharacterID == 0 {
		return
	}
	var buf bytes.Buffer
	if err := sess.LootFinder.Write(&buf); err != nil {
		logger.Error("encoding loot finder state", zap.Error(err))
		return
	}
	if err := h.states.Save(ctx, sess.CharacterID, h.cfg.Loot.ModVersion, buf.Bytes()); err != nil {
		logger.Error("saving loot finder state", zap.Error(err))
	}
}

// dispatch runs one line of input. quit is true when the player asked to
// leave.
func (h *GameHandler) dispatch(ctx context.Context, conn *telnet.Conn, sess *session.PlayerSession, presenter loot.Presenter, logger *zap.Logger, line string) (quit bool, err error) {
	cmd, in, ok := h.commands.ResolveLine(line)
	if in.Verb == "" {
		return false, nil
	}
	if !ok {
		_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Unknown command: %s. Type 'help' for available commands.", in.Verb))
		return false, nil
	}

	switch cmd.Handler {
	case command.HandlerMove:
		steps, err := in.Repeat()
		if err != nil {
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, err.Error()))
			return false, nil
		}
		dir, _ := command.Direction(cmd.Name)
		moved := 0
		for moved < steps && sess.Step(dir) {
			moved++
		}
		if moved == 0 {
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "You can't go that way."))
			return false, nil
		}
		_ = conn.WriteLine(h.renderPosition(sess))

	case command.HandlerLook:
		_ = conn.Write([]byte(h.renderZone(sess)))

	case command.HandlerLootList:
		return false, h.lootList(ctx, conn, sess, presenter, logger)

	case command.HandlerTravel:
		target, err := sess.FollowAutoTravel()
		switch {
		case errors.Is(err, session.ErrNoAutoTravel):
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "You have nowhere to travel to."))
		case err != nil:
			logger.Warn("autotravel failed", zap.Error(err))
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "You can't find a way there."))
		default:
			_ = conn.WriteLine(telnet.Colorf(telnet.Green, "You travel to %d,%d.", target.X, target.Y))
		}

	case command.HandlerAbilities:
		_ = conn.Write([]byte(renderAbilities(sess)))

	case command.HandlerExplore:
		res, err := sess.LootFinder.Autoexplore(ctx, h.lootEnv(sess, presenter, logger), sess.Pack, sess)
		if err != nil {
			if ctx.Err() != nil {
				return false, err
			}
			logger.Warn("autoexplore failed", zap.Error(err))
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "You can't find a way there."))
		}
		if len(res.Picked) > 0 {
			_ = conn.WriteLine(h.renderPosition(sess))
		}

	case command.HandlerPack:
		_ = conn.Write([]byte(renderPack(sess.Pack, h.cfg.Telnet.Color)))

	case command.HandlerUninstall:
		removed := sess.LootFinder.Uninstall(sess.Abilities, sess.Zone())
		logger.Info("loot list uninstalled", zap.Int("beacons_removed", removed))
		_ = conn.WriteLine(telnet.Colorf(telnet.Cyan, "Loot list removed. %d marked items cleared.", removed))

	case command.HandlerHelp:
		_ = conn.Write([]byte(h.commands.HelpText()))

	case command.HandlerQuit:
		return true, nil
	}
	return false, nil
}

// lootList runs the zone loot list through the player's ability.
func (h *GameHandler) lootList(ctx context.Context, conn *telnet.Conn, sess *session.PlayerSession, presenter loot.Presenter, logger *zap.Logger) error {
	if _, ok := sess.Abilities.ByCommand(lootfinder.CommandZoneLootList); !ok {
		_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "You don't have that ability."))
		return nil
	}
	_, err := sess.LootFinder.HandleCommand(ctx, lootfinder.CommandZoneLootList, h.lootEnv(sess, presenter, logger))
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		logger.Warn("loot list failed", zap.Error(err))
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "The loot list could not be shown."))
		return nil
	}
	if sess.TakeSkippedTurn() && sess.AutoTravel() != "" {
		_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Type 'travel' to walk to the liquid."))
	}
	return nil
}

func (h *GameHandler) lootEnv(sess *session.PlayerSession, presenter loot.Presenter, logger *zap.Logger) lootfinder.Env {
	return lootfinder.Env{
		Player:       sess,
		Knowledge:    sess.Knowledge,
		Values:       h.scripts.Zone(sess.ZoneID()),
		Presenter:    presenter,
		Messages:     sess,
		Travel:       sess,
		Turns:        sess,
		Logger:       logger,
		PopupOptions: []loot.PopupOption{loot.WithHotkeys(h.cfg.Loot.Hotkeys.Hotkeys())},
	}
}

// flush writes queued messages to the connection.
func (h *GameHandler) flush(conn *telnet.Conn, sess *session.PlayerSession) {
	for _, msg := range sess.Outbox.Drain() {
		_ = conn.WriteLine(telnet.NewlinesToCRLF(telnet.RenderMarkup(msg, h.cfg.Telnet.Color)))
	}
}

func (h *GameHandler) renderZone(sess *session.PlayerSession) string {
	var others []string
	for _, other := range h.sessions.PlayersInZone(sess.ZoneID()) {
		if other.UID != sess.UID {
			others = append(others, other.Name())
		}
	}
	return RenderZone(sess.Zone(), sess.Position(), sess.Knowledge, others, h.cfg.Telnet.Color)
}

func (h *GameHandler) renderPosition(sess *session.PlayerSession) string {
	p := sess.Position()
	return telnet.Colorf(telnet.Dim, "You are at %d,%d.", p.X, p.Y)
}
