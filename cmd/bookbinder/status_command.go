package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bookbinder/internal/deps"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check external tool availability and configured paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Defaults(cfg.FFmpeg.Binary))
			rows := make([][]string, 0, len(statuses))
			allRequired := true
			for _, status := range statuses {
				state := "missing"
				if status.Available {
					state = "ok"
				} else if status.Optional {
					state = "missing (optional)"
				} else {
					allRequired = false
				}
				detail := status.Detail
				if detail == "" {
					detail = status.Command
				}
				rows = append(rows, []string{status.Name, state, detail, status.Description})
			}
			fmt.Println(renderTable(
				[]string{"Tool", "State", "Path", "Purpose"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))

			fmt.Printf("\nOutput directory: %s\nLog file:         %s\nHistory database: %s\n",
				cfg.Paths.OutputDir, cfg.LogPath(), cfg.HistoryPath())

			if !allRequired {
				return fmt.Errorf("required external tools are missing")
			}
			return nil
		},
	}
}
