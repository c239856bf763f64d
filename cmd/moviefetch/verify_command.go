package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"moviefetch/internal/encoder"
	"moviefetch/internal/validator"
	"moviefetch/pkg/metadata"
)

var errInvalidDocument = errors.New("document is invalid")

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var format string
	var sidecar string

	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Check that an exported file parses and matches its sidecar digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			path := args[0]
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(path), ".")
			}
			f, ok := encoder.ParseFormat(format)
			if !ok {
				return fmt.Errorf("%w: %q", validator.ErrUnsupportedFormat, format)
			}

			checker := validator.NewDocumentValidator(cfg.EncoderOptions())
			result, err := checker.Validate(cmd.Context(), f, content)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.String())
			result.PrintErrors(out)
			result.PrintWarnings(out)

			valid := result.IsValid

			meta, err := loadSidecar(path, sidecar)
			if err != nil {
				return err
			}
			if meta != nil {
				integrity := checker.ValidateIntegrity(content, meta)
				fmt.Fprintf(out, "Integrity: %s\n", integrity.String())
				integrity.PrintErrors(out)
				valid = valid && integrity.IsValid
			}

			if !valid {
				return errInvalidDocument
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Document format (defaults to the file extension)")
	cmd.Flags().StringVar(&sidecar, "sidecar", "", "Metadata sidecar (defaults to <file>.meta when present)")

	return cmd
}

// loadSidecar returns nil without error when no sidecar was requested and
// the default one does not exist.
func loadSidecar(path, sidecar string) (*metadata.Metadata, error) {
	explicit := sidecar != ""
	if !explicit {
		sidecar = path + metadata.SidecarExt
	}

	data, err := os.ReadFile(sidecar)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sidecar: %w", err)
	}

	meta, err := metadata.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("parse sidecar %s: %w", sidecar, err)
	}
	return meta, nil
}
