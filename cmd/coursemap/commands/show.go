package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dgallion1/coursemap/internal/outline"
	"github.com/dgallion1/coursemap/internal/store"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show [outline-file]",
	Short: "Prints an outline, or the last stored one, as a table.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			o   *outline.CourseOutline
			err error
		)
		if len(args) == 1 {
			o, err = readOutline(args[0])
		} else {
			o, err = storedOutline(cmd.Context())
		}
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetTitle("%s (%s)", o.Course, o.Instructor)
		t.AppendHeader(table.Row{"#", "Section", "Item"})
		for i, s := range o.Sections {
			if len(s.Items) == 0 {
				t.AppendRow(table.Row{i + 1, s.Heading, ""})
				continue
			}
			for _, item := range s.Items {
				t.AppendRow(table.Row{i + 1, s.Heading, item})
			}
		}
		t.AppendFooter(table.Row{"", fmt.Sprintf("%d sections", len(o.Sections)), fmt.Sprintf("%d items", o.ItemCount())})
		t.Render()
		return nil
	},
}

// storedOutline reads the outline last saved under DATA_DIR.
func storedOutline(ctx context.Context) (*outline.CourseOutline, error) {
	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	o, err := st.Outlines().LoadOutline(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("no outline stored in %s", cfg.DataDir)
	}
	return o, err
}
