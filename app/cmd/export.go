package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tasklist/app/export"
)

func newExportCommand(stdout io.Writer, logger *log.Logger) *cobra.Command {
	var (
		format string
		out    string
	)

	c := &cobra.Command{
		Use:   "export",
		Short: "Write every stored task, deleted ones included",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, app, kv, err := openApp(ctx, logger)
			if err != nil {
				return err
			}
			defer kv.Close(ctx)

			b, _, err := export.NewExporter().Export(app.Tasks(), format)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = stdout.Write(b)
				return err
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "wrote %s\n", out)
			return nil
		},
	}
	c.Flags().StringVarP(&format, "format", "f", "json", "Export format: "+strings.Join(export.Formats(), "|"))
	c.Flags().StringVarP(&out, "out", "o", "", "Output path (default stdout)")
	return c
}
