package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bookbinder/internal/adts"
	"bookbinder/internal/config"
	"bookbinder/internal/logging"
	"bookbinder/internal/merge"
	"bookbinder/internal/parts"
)

func newScanCommand(cmdCtx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Inspect a directory of ADTS parts without merging",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			inputDir, err := cmd.Flags().GetString("input-dir")
			if err != nil {
				return err
			}
			inputDir, err = config.ExpandPath(inputDir)
			if err != nil {
				return err
			}

			paths, err := parts.Discover(inputDir)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no .aac parts found in %s", inputDir)
			}

			sources, failures, err := parts.Load(cmd.Context(), paths)
			if err != nil {
				return err
			}
			for _, failure := range failures {
				logger.Warn("part unreadable",
					logging.String("part", failure.Path),
					logging.Error(failure.Err),
				)
			}

			scanner := adts.NewScanner(cfg.Merge.MinFrameBytes, cfg.Merge.MaxFrameBytes)
			scanned := make([]*merge.Part, 0, len(sources))
			rows := make([][]string, 0, len(sources))
			for _, source := range sources {
				result := scanner.Scan(source.Data)
				part := &merge.Part{
					Path:         source.Path,
					OrderIndex:   source.OrderIndex,
					Frames:       result.Frames,
					GarbageBytes: result.GarbageBytes,
					ResyncEvents: result.ResyncEvents,
				}
				ratio := adts.GarbageRatio(result, len(source.Data))
				part.Suspect = len(source.Data) > 0 && ratio > cfg.Merge.CorruptionThreshold
				scanned = append(scanned, part)

				configLabel := "-"
				if streamConfig, ok := result.Config(); ok {
					configLabel = streamConfig.String()
				}
				note := ""
				if part.Suspect {
					note = "suspect"
				} else if part.Empty() {
					note = "empty"
				}
				rows = append(rows, []string{
					fmt.Sprint(source.OrderIndex + 1),
					source.Path,
					fmt.Sprint(len(source.Data)),
					fmt.Sprint(len(result.Frames)),
					fmt.Sprint(result.GarbageBytes),
					fmt.Sprintf("%.2f%%", ratio*100),
					fmt.Sprint(result.ResyncEvents),
					configLabel,
					note,
				})
			}

			fmt.Println(renderTable(
				[]string{"#", "Part", "Bytes", "Frames", "Garbage", "Ratio", "Resyncs", "Config", "Note"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft},
			))

			ref, err := merge.ValidateConsistency(scanned)
			switch {
			case errors.Is(err, merge.ErrNoDecodableAudio):
				fmt.Println("\nNo decodable audio across any part.")
			case err != nil:
				fmt.Printf("\nInconsistent parts, direct concatenation unsafe: %v\n", err)
			default:
				fmt.Printf("\nAll parts share %s, direct concatenation is safe.\n", ref)
			}
			return nil
		},
	}

	cmd.Flags().StringP("input-dir", "i", "", "Directory containing .aac parts (required)")
	_ = cmd.MarkFlagRequired("input-dir")

	return cmd
}
