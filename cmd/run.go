package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"paperwatch/internal/pipeline"
	"paperwatch/internal/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one watch cycle now",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		p, err := pipeline.New(cfg)
		if err != nil {
			return err
		}

		result := p.Run(cmd.Context())
		fmt.Println(report.Summary(result))
		if !result.Success {
			return fmt.Errorf("run failed: %s", result.Err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
