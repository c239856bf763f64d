package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"moviefetch/internal/encoder"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "formats",
		Short:       "List supported export formats",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(encoder.Formats))
			for _, f := range encoder.Formats {
				rows = append(rows, []string{f.String(), "." + f.Extension(), f.MIMEType()})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Format", "Extension", "MIME type"}, rows, nil))
			return nil
		},
	}
}
