package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/adapter/presenter"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/boardimage"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/bot"
	appcfg "github.com/park285/Eugene-KakaoTalk-bot/internal/config"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/facts"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/irisfast"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/msgcat"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/obslog"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/results"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/scoreboard"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/session"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", appcfg.DefaultPath, "path to the config file")
	flag.Parse()

	if err := obslog.InitFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer obslog.Sync()
	logger := obslog.L()

	if err := run(*configPath, logger); err != nil {
		logger.Error("bot_exit", zap.Error(err))
		obslog.Sync()
		os.Exit(1)
	}
}

func run(configPath string, logger *zap.Logger) error {
	cfg, err := appcfg.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	headers := irisfast.StaticHeaders(cfg.XUserID, cfg.XUserEmail, cfg.XSessionID)
	client := irisfast.NewClient(cfg.IrisBaseURL,
		irisfast.WithHeaderProvider(headers),
		irisfast.WithLogger(logger.Named("iris")),
	)

	ws := irisfast.NewWebSocket(cfg.IrisWSURL, 5, time.Second)
	ws.SetLogger(logger.Named("ws"))
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		logger.Info("ws_state", zap.String("state", string(state)))
	})
	egress := irisfast.NewEgress(cfg.EgressMode, cfg.DryRun, client, ws, logger.Named("egress"))

	scores, err := openScoreboard(ctx, cfg.RedisURL, logger)
	if err != nil {
		return err
	}
	defer scores.Close()

	archive, err := results.Open(ctx, cfg.ResultsDSN, logger.Named("results"))
	if err != nil {
		return fmt.Errorf("results: %w", err)
	}
	defer archive.Close()

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return fmt.Errorf("messages: %w", err)
	}
	book, err := facts.Load(cfg.FactsFile)
	if err != nil {
		return fmt.Errorf("facts: %w", err)
	}

	registry := session.NewRegistry(session.Config{
		MaxGames: cfg.MaxConcurrentGames,
		Logger:   logger.Named("registry"),
		OnDrop:   bot.RecordResults(scores, archive, logger.Named("results")),
	})
	go registry.RunSweeper(ctx, cfg.SweepInterval, cfg.GameIdleTimeout)

	replies := presenter.NewPresenter(
		func(room, message string) error { return egress.SendText(context.Background(), room, message) },
		func(room, imageBase64 string) error { return egress.SendImage(context.Background(), room, imageBase64) },
	)
	deps := bot.Deps{
		Registry:  registry,
		Formatter: presenter.NewFormatter(catalog, cfg, logger.Named("format")),
		Replier:   replies,
		Scores:    scores,
		Archive:   archive,
		Facts:     book,
		Logger:    logger.Named("bot"),
	}
	if cfg.BoardImage {
		deps.Images = boardimage.NewRenderer()
	}
	handler, err := bot.New(deps, bot.Config{Prefix: cfg.BotPrefix, OwnerID: cfg.OwnerID, Status: cfg.BotStatus})
	if err != nil {
		return err
	}

	ws.OnMessage(func(msg *irisfast.Message) {
		if msg == nil || msg.Msg == "" {
			return
		}
		if !cfg.RoomAllowed(msg.Room) {
			logger.Debug("room_ignored", zap.String("room", msg.Room))
			return
		}
		go handler.Handle(ctx, msg)
	})

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = ws.Connect(cctx)
	cancel()
	if err != nil {
		return fmt.Errorf("ws connect: %w", err)
	}
	logger.Info("bot_started",
		zap.String("prefix", cfg.BotPrefix),
		zap.String("egress", cfg.EgressMode),
		zap.Int("max_games", cfg.MaxConcurrentGames),
		zap.Duration("idle_timeout", cfg.GameIdleTimeout),
		zap.Bool("board_image", cfg.BoardImage),
	)

	<-ctx.Done()
	logger.Info("bot_stopping")

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	_ = ws.Close(closeCtx)
	return nil
}

func openScoreboard(ctx context.Context, redisURL string, logger *zap.Logger) (scoreboard.Store, error) {
	if redisURL == "" {
		logger.Info("scoreboard_memory")
		return scoreboard.NewMemoryStore(), nil
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	store, err := scoreboard.NewRedisStore(pctx, redisURL, logger.Named("scoreboard"))
	if err != nil {
		return nil, fmt.Errorf("scoreboard: %w", err)
	}
	return store, nil
}
