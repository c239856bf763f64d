package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"moviefetch/internal/encoder"
	"moviefetch/internal/normalizer"
)

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	var inputs []string

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Print the normalized entities of a batch as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			raws, _, err := ctx.records(cmd.Context(), inputs)
			if err != nil {
				return err
			}

			processor := normalizer.NewProcessor(
				normalizer.WithWorkers(cfg.Normalizer.Workers),
				normalizer.WithEpisodes(cfg.Export.IncludeEpisodes),
				normalizer.WithLogger(ctx.logger()),
			)
			batch := processor.NormalizeBatch(raws)

			enc, err := encoder.New(encoder.JSON, encoder.DefaultOptions())
			if err != nil {
				return err
			}
			doc, err := enc.Encode(batch.Entities)
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(doc.Content); err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			if len(batch.Failures) > 0 {
				printFailures(cmd.ErrOrStderr(), batch.Failures)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "Batch file to normalize (JSON or YAML, repeatable)")

	return cmd
}
