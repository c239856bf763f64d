package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"moviefetch/internal/export"
	"moviefetch/internal/normalizer"
	"moviefetch/pkg/metadata"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var inputs []string
	var format string
	var outputDir string
	var checksum bool
	var stdout bool
	var strict bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Normalize a batch and write it in one export format",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log := ctx.logger()

			if format == "" {
				format = cfg.Export.DefaultFormat
			}
			if outputDir == "" {
				outputDir = cfg.Output.Dir
			}
			if !cmd.Flags().Changed("checksum") {
				checksum = cfg.Output.Checksum
			}

			raws, name, err := ctx.records(cmd.Context(), inputs)
			if err != nil {
				return err
			}
			log.Info("loaded records", "source", name, "records", len(raws))

			exporter, err := export.FromConfig(cfg, log)
			if err != nil {
				return err
			}

			result, err := exporter.Export(cmd.Context(), raws, format)
			if err != nil {
				var empty *export.EmptyResultError
				if errors.As(err, &empty) && len(empty.Failures) > 0 {
					printFailures(cmd.ErrOrStderr(), empty.Failures)
				}
				return err
			}

			if stdout {
				if _, err := cmd.OutOrStdout().Write(result.Document.Content); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			} else {
				path, err := writeDocument(outputDir, result, checksum)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entities from %d records to %s (%s)\n",
					result.Entities, len(raws), path, result.Digest)
			}

			if len(result.Failures) > 0 {
				printFailures(cmd.ErrOrStderr(), result.Failures)
				if strict {
					return fmt.Errorf("%d of %d records failed", len(result.Failures), len(raws))
				}
			}
			for _, w := range result.Warnings {
				log.Debug("record warning", "record", w.Index, "field", w.Field, "detail", w.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&inputs, "input", "i", nil, "Batch file to export (JSON or YAML, repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format (json, csv, sql, txt, xml)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for the exported file")
	cmd.Flags().BoolVar(&checksum, "checksum", false, "Write a .meta sidecar with the content digest")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Write the document to stdout instead of a file")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any record fails")

	return cmd
}

// writeDocument stores the document under dir and returns its path. The
// sidecar is written after the document so a present sidecar always refers
// to a complete file.
func writeDocument(dir string, result *export.Result, checksum bool) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	doc := result.Document
	path := filepath.Join(dir, doc.Filename)
	if err := os.WriteFile(path, doc.Content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	if checksum {
		format := strings.TrimPrefix(filepath.Ext(doc.Filename), ".")
		meta := metadata.Sign(doc.Filename, format, result.RequestID, doc.Content, time.Now())
		if err := os.WriteFile(path+metadata.SidecarExt, meta.Encode(), 0o644); err != nil {
			return "", fmt.Errorf("write sidecar: %w", err)
		}
	}

	return path, nil
}

func printFailures(w io.Writer, failures []normalizer.RecordFailure) {
	rows := make([][]string, 0, len(failures))
	for _, f := range failures {
		id := "-"
		if f.ID != 0 {
			id = fmt.Sprint(f.ID)
		}
		rows = append(rows, []string{fmt.Sprint(f.Index), id, f.Err.Error()})
	}
	fmt.Fprintf(w, "%d record(s) skipped:\n", len(failures))
	fmt.Fprintln(w, renderTable(w, []string{"Record", "ID", "Error"}, rows, []columnAlignment{alignRight, alignRight, alignLeft}))
}
