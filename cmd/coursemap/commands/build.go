package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/coursemap/internal/export"
)

var buildOut string

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "", "Where to write the mind-map JSON (default stdout).")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build <outline.{json,md,txt,csv,docx}>",
	Short: "Builds a mind-map document from an outline file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := readOutline(args[0])
		if err != nil {
			return err
		}
		if missing := o.CheckRequired(); len(missing) > 0 {
			return fmt.Errorf("outline %s is missing %s", args[0], strings.Join(missing, ", "))
		}
		b, err := newBuilder()
		if err != nil {
			return err
		}
		data, err := export.JSON(b.Build(o))
		if err != nil {
			return err
		}
		log.Debug("built mind map", "source", args[0], "sections", len(o.Sections), "items", o.ItemCount())
		return writeOutput(cmd.OutOrStdout(), buildOut, data)
	},
}
