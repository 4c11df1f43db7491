package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/olsonja88/ICS499-Bears/internal/auth"
	"github.com/olsonja88/ICS499-Bears/internal/chat"
	"github.com/olsonja88/ICS499-Bears/internal/llm"
	"github.com/olsonja88/ICS499-Bears/internal/metrics"
	"github.com/olsonja88/ICS499-Bears/internal/mutation"
	"github.com/olsonja88/ICS499-Bears/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dancehall HTTP server",
	Long: `Run the HTTP server backing the chat clients.

The server answers dance questions for everyone and, for administrators,
applies the assistant's insert statements to the dance collection.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	model, err := llm.NewModel(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init completion provider: %w", err)
	}

	sessions := chat.NewSessionStore(cfg.MaxSessions, cfg.SessionIdleTTL, cfg.MaxTurns, logger)
	collector := metrics.NewCollector()
	service := chat.NewService(
		model,
		mutation.NewExecutor(st, logger),
		sessions,
		collector,
		cfg.LLMTimeout,
		logger,
	)

	srv := server.New(
		cfg.ListenAddr,
		service,
		sessions,
		auth.NewInspector(cfg.JWTSecret),
		collector,
		cfg.AuthStrict,
		logger,
	)
	return srv.Run(ctx)
}
