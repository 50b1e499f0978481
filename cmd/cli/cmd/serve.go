package cmd

import (
	"context"
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

var serveAddr string

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		gin.SetMode(cfg.Server.Mode)
		defer logging.Sync()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if cfg.Auth.WeakSecret() {
			logging.Warn("using a development jwt secret", zap.String("mode", cfg.Server.Mode))
		}
		if err := api.Serve(ctx, cfg, logging.Named("server"), Version); err != nil {
			logging.Error("server stopped", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}
