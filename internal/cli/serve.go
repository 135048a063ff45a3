package cli

import (
	"github.com/spf13/cobra"

	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/daemon"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/logging"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/observability"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/speech"
)

// NewServeCmd starts the HTTP service.
func NewServeCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the instruction endpoint over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // best-effort

			metrics := observability.NewMetrics()
			coordinator, err := buildEngine(cfg, logger, metrics, speech.Noop{})
			if err != nil {
				return err
			}

			server := daemon.NewServer(cfg, coordinator, metrics, logger)
			return server.Run(cmd.Context())
		},
	}
}
