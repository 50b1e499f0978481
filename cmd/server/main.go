// Package main is the entry point for the biznes API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/api"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/config"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/logging"
)

const version = "0.1.0"

func main() {
	var (
		cfgFile string
		addr    string
	)

	root := &cobra.Command{
		Use:          "biznes-server",
		Short:        "BiznesYordam fulfillment pricing API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if cfgFile != "" {
				loaded, err := config.Load(cfgFile)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			cfg.ApplyEnv()
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := logging.Initialize(cfg.Logging); err != nil {
				return err
			}
			defer logging.Sync()
			gin.SetMode(cfg.Server.Mode)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Auth.WeakSecret() {
				logging.Warn("using a development jwt secret", zap.String("mode", cfg.Server.Mode))
			}
			logging.Info("starting server", zap.String("addr", cfg.Server.Addr), zap.String("version", version))
			if err := api.Serve(ctx, cfg, logging.Named("server"), version); err != nil {
				logging.Error("server stopped", zap.Error(err))
				return err
			}
			return nil
		},
	}
	root.Flags().StringVar(&cfgFile, "config", "", "config file, YAML or JSON")
	root.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
