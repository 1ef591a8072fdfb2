package commands

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/coursemap/internal/export"
)

var (
	exportFormat string
	exportOut    string
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format: json or docx.")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default "+export.JSONFilename+" or "+export.DOCXFilename+").")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [--format json|docx] [--out <path>]",
	Short: "Exports the last stored outline as a mind map or a Word document.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := storedOutline(cmd.Context())
		if err != nil {
			return err
		}

		var (
			data []byte
			name string
		)
		switch exportFormat {
		case "json":
			b, err := newBuilder()
			if err != nil {
				return err
			}
			if data, err = export.JSON(b.Build(o)); err != nil {
				return err
			}
			name = export.JSONFilename
		case "docx":
			var buf bytes.Buffer
			if err := export.WriteDOCX(&buf, o); err != nil {
				return err
			}
			data, name = buf.Bytes(), export.DOCXFilename
		default:
			return fmt.Errorf("unknown format %q, want json or docx", exportFormat)
		}

		out := exportOut
		if out == "" {
			out = name
		}
		if err := writeOutput(cmd.OutOrStdout(), out, data); err != nil {
			return err
		}
		if out != "-" {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
		}
		return nil
	},
}
