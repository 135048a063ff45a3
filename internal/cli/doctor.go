package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewDoctorCmd returns a health-check command validating config and environment.
func NewDoctorCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Validate configuration and provider chains",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config OK. Providers: %d\n", len(cfg.Providers))
			fmt.Fprintf(out, "Text chain: %s\n", strings.Join(cfg.Router.Text.Chain(), " -> "))
			if chain := cfg.Router.Vision.Chain(); len(chain) > 0 {
				fmt.Fprintf(out, "Vision chain: %s\n", strings.Join(chain, " -> "))
			} else {
				fmt.Fprintln(out, "Vision chain: none (move_object and visual_qa disabled)")
			}
			fmt.Fprintf(out, "Robot simulated: %v, safe height: %d, metrics: %v\n",
				cfg.Robot.Simulated, cfg.Robot.SafeHeight, cfg.Server.MetricsEnabled)
			return nil
		},
	}
}
