package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"solana-wallet-watch/internal/assets"
	"solana-wallet-watch/internal/config"
	"solana-wallet-watch/internal/dex"
	"solana-wallet-watch/internal/helius"
	"solana-wallet-watch/internal/observability"
	"solana-wallet-watch/internal/render"
	"solana-wallet-watch/internal/wallet"
	"solana-wallet-watch/internal/watch"
)

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// walletArg validates the positional wallet argument shared by both commands.
func walletArg(c *cli.Context) (string, error) {
	if c.NArg() < 1 {
		return "", fmt.Errorf("wallet address is required")
	}
	addr := c.Args().Get(0)
	if err := wallet.Validate(addr); err != nil {
		return "", fmt.Errorf("invalid wallet address: %w", err)
	}
	return addr, nil
}

// buildRenderer wires the fetch/render pipeline shared by both commands.
func buildRenderer(cfg *config.Config, addr string, logger *slog.Logger) (*render.Renderer, *watch.Fetcher) {
	rpc := helius.NewHTTPClient(cfg.RPCURL)
	renderer := render.NewRenderer(render.RendererOptions{
		Trades:         dex.NewSwapParser(cfg.RPCURL, logger),
		Assets:         assets.NewService(rpc, cfg.AssetCacheTTL, logger),
		Wallet:         addr,
		MinFeeLamports: cfg.MinFeeLamports,
		Logger:         logger,
	})
	return renderer, watch.NewFetcher(rpc, logger)
}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch and display recent transactions for a wallet",
		ArgsUsage: "WALLET_ADDRESS",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Value:   watch.DefaultLimit,
				Usage:   fmt.Sprintf("Number of transactions to fetch (%d-%d)", watch.MinLimit, watch.MaxLimit),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: func(c *cli.Context) error {
			addr, err := walletArg(c)
			if err != nil {
				return err
			}

			cfg, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("configuration: %w", err)
			}

			logger := newLogger(c.Bool("verbose"))
			renderer, fetcher := buildRenderer(cfg, addr, logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sigs, err := fetcher.Fetch(ctx, addr, c.Int("limit"))
			if err != nil {
				return err
			}

			if len(sigs) == 0 {
				fmt.Println("no transactions found")
				return nil
			}

			// Strictly in provider order, one at a time; a failed render
			// does not stop the rest.
			for _, sig := range sigs {
				if err := renderer.Render(ctx, sig.Signature); err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					logger.Warn("render failed", "signature", sig.Signature, "error", err)
				}
			}

			return nil
		},
	}
}

func trackCommand() *cli.Command {
	return &cli.Command{
		Name:      "track",
		Usage:     "Subscribe to a wallet and display new transactions as they land",
		ArgsUsage: "WALLET_ADDRESS",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "Prometheus metrics HTTP address (empty to disable)",
				EnvVars: []string{"WALLETWATCH_METRICS_ADDR"},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Action: func(c *cli.Context) error {
			addr, err := walletArg(c)
			if err != nil {
				return err
			}

			cfg, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("configuration: %w", err)
			}

			logger := newLogger(c.Bool("verbose"))
			logger.Info(cfg.RedactedSummary())

			if !wallet.IsOnCurve(addr) {
				logger.Warn("address is off-curve (program-derived); tracking anyway", "wallet", addr)
			}

			if metricsAddr := c.String("metrics-addr"); metricsAddr != "" {
				go func() {
					mux := http.NewServeMux()
					mux.Handle("/metrics", observability.Handler())
					mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
						w.WriteHeader(http.StatusOK)
						w.Write([]byte("ok"))
					})
					logger.Info("starting metrics server", "addr", metricsAddr)
					if err := http.ListenAndServe(metricsAddr, mux); err != nil && err != http.ErrServerClosed {
						logger.Error("metrics server failed", "error", err)
					}
				}()
			}

			renderer, fetcher := buildRenderer(cfg, addr, logger)

			sessionCfg := helius.DefaultSessionConfig()
			sessionCfg.PingInterval = cfg.PingInterval

			tracker := watch.NewTracker(watch.TrackerOptions{
				Wallet: addr,
				Dial: func(ctx context.Context) (helius.AccountStream, error) {
					return helius.DialAccount(ctx, cfg.WSURL, addr, &sessionCfg, logger)
				},
				Latest:            fetcher,
				Handler:           watch.HandlerFunc(renderer.Render),
				ReconnectDelay:    cfg.ReconnectDelay,
				MaxReconnectDelay: cfg.MaxReconnectDelay,
				Logger:            logger,
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("tracking wallet", "wallet", addr)
			if err := tracker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			logger.Info("shutdown complete")
			return nil
		},
	}
}
