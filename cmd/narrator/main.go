package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"crypto-narrator/internal/challenge"
	"crypto-narrator/internal/logger"
	"crypto-narrator/internal/session"
	"crypto-narrator/internal/ui"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// The console owns the terminal, so logs go to a file.
	must(initializeSystem("narrator.log"))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = logger.Shutdown(ctx)
	}()

	ctx := context.Background()
	cfg, err := loadConfig(ctx, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logConfigSummary(ctx, cfg)

	gate := challenge.New(nil)
	eng := initializeEngine(cfg, gate,
		initializeFetcher(cfg),
		initializeComposer(ctx, cfg),
		initializeSink(cfg),
	)

	sessions := session.NewStore()
	sess := sessions.Create(gate.NewState(), cfg.Webhook.DefaultURL)
	logger.Info(ctx, "Operator session started", "session_id", sess.ID)
	defer func() {
		sessions.End(sess.ID)
		logger.Info(ctx, "Operator session ended", "session_id", sess.ID)
	}()

	app := ui.NewApp(eng, sess, ui.Options{
		ChartWidth: cfg.UI.ChartWidth,
		Decimals:   [2]int{cfg.Assets.Primary.PriceDecimals, cfg.Assets.Secondary.PriceDecimals},
	})
	if err := app.Run(); err != nil {
		logger.ErrorWithErr(ctx, "Console exited with error", err)
		fmt.Fprintln(os.Stderr, err)
	}
}
