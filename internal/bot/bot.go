// Package bot routes prefixed chat commands to the tic tac toe, fact and help handlers.
package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/park285/Eugene-KakaoTalk-bot/internal/adapter/presenter"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/boardimage"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/command"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/facts"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/irisfast"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/results"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/scoreboard"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/session"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/tictactoe"
	"github.com/park285/Eugene-KakaoTalk-bot/pkg/t3dto"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 5
	maxHistoryLimit     = 20
	storeTimeout        = 3 * time.Second
)

// Replier delivers replies to a room. *presenter.Presenter implements it.
type Replier interface {
	Text(room, message string) error
	Board(room, message string, view *t3dto.GameView) error
}

// BoardRenderer draws a board image. *boardimage.Renderer implements it.
type BoardRenderer interface {
	RenderPNG(ctx context.Context, board tictactoe.Board, player1, player2 tictactoe.Player, opts boardimage.Options) ([]byte, error)
}

type Deps struct {
	Registry  *session.Registry
	Formatter *presenter.Formatter
	Replier   Replier
	Scores    scoreboard.Store
	// Archive is optional; history is unavailable without it.
	Archive results.Repository
	Facts   *facts.Book
	// Images is optional; boards are sent as text only without it.
	Images BoardRenderer
	Logger *zap.Logger
}

type Config struct {
	Prefix  string
	OwnerID string
	Status  string
}

// Bot handles one chat message at a time per call; calls may run concurrently.
type Bot struct {
	deps   Deps
	cfg    Config
	t3     command.Set
	fact   command.Spec
	logger *zap.Logger
}

var t3Commands = command.NewSet(
	command.Spec{Name: "start", Min: 3, Max: 3, Usage: "t3.usage.start"},
	command.Spec{Name: "put", Min: 1, Max: 1, Usage: "t3.usage.put"},
	command.Spec{Name: "quit", Min: 0, Max: 0, Usage: "t3.usage.quit"},
	command.Spec{Name: "board", Min: 0, Max: 0, Usage: "t3.usage.board"},
	command.Spec{Name: "stats", Min: 0, Max: 1, Usage: "t3.usage.stats"},
	command.Spec{Name: "history", Min: 0, Max: 1, Usage: "t3.usage.history"},
	command.Spec{Name: "help", Min: 0, Max: 0, Usage: "t3.usage.help"},
)

func New(deps Deps, cfg Config) (*Bot, error) {
	switch {
	case deps.Registry == nil:
		return nil, errors.New("bot: registry is required")
	case deps.Formatter == nil:
		return nil, errors.New("bot: formatter is required")
	case deps.Replier == nil:
		return nil, errors.New("bot: replier is required")
	case deps.Scores == nil:
		return nil, errors.New("bot: scoreboard is required")
	case deps.Facts == nil:
		return nil, errors.New("bot: facts are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Prefix = strings.TrimSpace(cfg.Prefix)
	if cfg.Prefix == "" {
		return nil, errors.New("bot: empty command prefix")
	}
	return &Bot{
		deps:   deps,
		cfg:    cfg,
		t3:     t3Commands,
		fact:   command.Spec{Name: "fact", Min: 1, Max: -1, Usage: "fact.usage"},
		logger: logger,
	}, nil
}

// request is one parsed chat message.
type request struct {
	room   string
	sender string
	userID string
	inv    command.Invocation
}

// Handle answers msg when it carries the command prefix. Panics are recovered and
// answered with a generic error so one bad message never takes the bot down.
func (b *Bot) Handle(ctx context.Context, msg *irisfast.Message) {
	if msg == nil || strings.TrimSpace(msg.Msg) == "" {
		return
	}
	inv, ok := command.Parse(b.cfg.Prefix, msg.Msg)
	if !ok {
		return
	}
	req := request{
		room:   msg.Room,
		sender: msg.SenderName(),
		userID: msg.UserID(),
		inv:    inv,
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("command_panic",
				zap.String("room", req.room),
				zap.String("sender", req.sender),
				zap.String("command", req.inv.Name),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			b.text(req.room, b.deps.Formatter.InternalError())
		}
	}()

	b.dispatch(ctx, req)
}

func (b *Bot) dispatch(ctx context.Context, req request) {
	switch req.inv.Name {
	case "", "help":
		b.text(req.room, b.deps.Formatter.Help(b.cfg.Status))
	case "t3":
		b.handleT3(ctx, req)
	case "fact":
		b.handleFact(req)
	default:
		b.text(req.room, b.deps.Formatter.UnknownCommand())
	}
}

func (b *Bot) text(room, message string) {
	if err := b.deps.Replier.Text(room, message); err != nil {
		b.logger.Warn("reply_failed", zap.String("room", room), zap.Error(err))
	}
}

func (b *Bot) board(room, message string, view *t3dto.GameView) {
	if err := b.deps.Replier.Board(room, message, view); err != nil {
		b.logger.Warn("reply_failed", zap.String("room", room), zap.Error(err))
	}
}

// bind checks arity and answers with the usage line on failure.
func (b *Bot) bind(req request, spec command.Spec, inv command.Invocation) (command.Args, bool) {
	args, err := spec.Bind(inv)
	if err != nil {
		b.logger.Debug("command_usage", zap.String("command", spec.Name), zap.Error(err))
		b.text(req.room, b.deps.Formatter.Usage(spec.Usage))
		return nil, false
	}
	return args, true
}

func (b *Bot) isOwner(req request) bool {
	owner := strings.TrimSpace(b.cfg.OwnerID)
	if owner == "" {
		return false
	}
	return req.userID == owner || (req.userID == "" && req.sender == owner)
}

func storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
}

func historyLimit(args command.Args) (int, error) {
	if args.Len() == 0 {
		return defaultHistoryLimit, nil
	}
	n, err := args.Int(0)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("history count %d: must be positive", n)
	}
	return min(n, maxHistoryLimit), nil
}
