package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/NgigiN/fundfusion/internal/config"
	"github.com/NgigiN/fundfusion/internal/cooldown"
	"github.com/NgigiN/fundfusion/internal/discord"
	"github.com/NgigiN/fundfusion/internal/funds"
	"github.com/NgigiN/fundfusion/internal/httpapi"
	"github.com/NgigiN/fundfusion/internal/ledger"
	"github.com/NgigiN/fundfusion/internal/storage"
	"github.com/NgigiN/fundfusion/internal/wallet"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when configured, the Discord bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Debug)
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			defer logger.Sync()
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := storage.NewDatabase(cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	var opts []ledger.Option
	if cfg.SeedDemo {
		opts = append(opts, ledger.WithOpening(ledger.DemoPortfolio()))
	}
	l := ledger.New(opts...)

	client := wallet.WithRetry(
		wallet.NewMockClient(cfg.WalletAddress, cfg.ConnectLatency, cfg.SubmitLatency, logger),
		uint(cfg.WalletRetries),
		logger,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := funds.NewService(l, cooldown.NewGate(db, cfg.Cooldown), client, logger,
		funds.WithWalletTimeout(cfg.WalletTimeout),
		funds.WithMetrics(funds.NewMetrics(reg)),
	)

	server := httpapi.NewServer(httpapi.DefaultServerConfig(cfg.HTTPAddr), svc, reg, logger)

	var bot *discord.Bot
	if cfg.DiscordEnabled() {
		bot, err = discord.NewBot(cfg.DiscordBotToken, cfg.DiscordChannelID, svc, logger)
		if err != nil {
			return err
		}
		if err := bot.Start(); err != nil {
			return err
		}
		server.BotConnected = bot.Connected
	}

	logger.Info("FundFusion started",
		zap.String("addr", cfg.HTTPAddr),
		zap.Duration("cooldown", cfg.Cooldown),
		zap.Bool("discord", bot != nil),
		zap.Bool("seed_demo", cfg.SeedDemo))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if bot != nil {
			if err := bot.Stop(); err != nil {
				logger.Warn("Failed to close Discord session", zap.Error(err))
			}
		}
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	logger.Info("FundFusion stopped")
	return nil
}
