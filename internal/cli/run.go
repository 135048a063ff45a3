package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/logging"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/observability"
	"github.com/WenhaoDaiCN/multimodal-llm-robotics/internal/speech"
)

// NewRunCmd wires the interactive session loop: read an instruction, run
// one planning turn, speak the response, repeat.
func NewRunCmd(opts *Options) *cobra.Command {
	var once string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the interactive instruction loop",
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
			speaker := &speech.Console{Out: cmd.OutOrStdout()}
			coordinator, err := buildEngine(cfg, logger, metrics, speaker)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			if strings.TrimSpace(once) != "" {
				result := coordinator.Turn(ctx, once)
				printTurnDetail(cmd, result.Dropped, result.Errors)
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Embodied Agent: Listen, See, Act – Multimodal Robotic Control")
			fmt.Fprintln(cmd.OutOrStdout(), "Type an instruction, or 'exit' to quit.")

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(cmd.OutOrStdout(), "> ")
				if !scanner.Scan() {
					break
				}
				if err := ctx.Err(); err != nil {
					break
				}
				instruction := strings.TrimSpace(scanner.Text())
				if instruction == "" {
					continue
				}
				if instruction == "exit" || instruction == "quit" {
					break
				}

				result := coordinator.Turn(ctx, instruction)
				printTurnDetail(cmd, result.Dropped, result.Errors)
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&once, "instruction", "", "Run a single instruction and exit")
	return cmd
}

func printTurnDetail(cmd *cobra.Command, dropped, stepErrors []string) {
	for _, note := range dropped {
		fmt.Fprintf(cmd.ErrOrStderr(), "[dropped] %s\n", note)
	}
	for _, e := range stepErrors {
		fmt.Fprintf(cmd.ErrOrStderr(), "[step error] %s\n", e)
	}
}
