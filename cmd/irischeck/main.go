// irischeck checks the Iris HTTP API and WebSocket with the bot's credentials.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/irisfast"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/obslog"
	"go.uber.org/zap"
)

func main() {
	watch := flag.Duration("watch", 10*time.Second, "how long to print incoming WebSocket messages")
	flag.Parse()

	opts := obslog.OptionsFromEnv()
	opts.File = ""
	opts.Console = true
	if err := obslog.Init(opts); err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer obslog.Sync()
	logger := obslog.L()

	baseURL := os.Getenv("IRIS_BASE_URL")
	wsURL := os.Getenv("IRIS_WS_URL")
	if baseURL == "" {
		logger.Error("IRIS_BASE_URL is required")
		obslog.Sync()
		os.Exit(1)
	}
	headers := irisfast.StaticHeaders(os.Getenv("X_USER_ID"), os.Getenv("X_USER_EMAIL"), os.Getenv("X_SESSION_ID"))

	client := irisfast.NewClient(baseURL,
		irisfast.WithHeaderProvider(headers),
		irisfast.WithTimeout(8*time.Second),
		irisfast.WithLogger(logger),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cfg, err := client.GetConfig(ctx)
	if err != nil {
		logger.Warn("iris_config_failed", zap.Error(err))
	} else {
		logger.Info("iris_config_ok",
			zap.String("bot_name", cfg.BotName),
			zap.Int64("bot_id", cfg.BotID),
			zap.Int("port", cfg.Port),
			zap.Int("polling", cfg.PollingSpeed),
			zap.Int("rate", cfg.MessageRate),
			zap.String("endpoint", cfg.WebserverEndpoint),
		)
	}

	if wsURL == "" {
		logger.Info("IRIS_WS_URL not set; skipping WS check")
		return
	}

	ws := irisfast.NewWebSocket(wsURL, 5, time.Second)
	ws.SetLogger(logger.Named("ws"))
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		logger.Info("ws_state", zap.String("state", string(state)))
	})
	ws.OnMessage(func(msg *irisfast.Message) {
		logger.Info("ws_message",
			zap.String("room", msg.Room),
			zap.String("from", msg.SenderName()),
			zap.String("text", msg.Msg),
		)
	})

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ccancel()
	if err := ws.Connect(cctx); err != nil {
		logger.Warn("ws_connect_failed", zap.Error(err))
		return
	}

	t := time.NewTimer(*watch)
	<-t.C

	_ = ws.Close(context.Background())
}
