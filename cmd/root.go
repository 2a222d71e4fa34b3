package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var envFile string

func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:           "fundfusion",
		Short:         "Investment ledger with wallet deposits and withdrawals",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before the environment")

	root.AddCommand(serveCmd(), tierCmd())
	return root.ExecuteContext(ctx)
}

func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config = zap.NewDevelopmentConfig()
	}
	return config.Build()
}
