package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/coursemap/internal/browser"
	"github.com/dgallion1/coursemap/internal/extract"
	"github.com/dgallion1/coursemap/internal/page"
	"github.com/dgallion1/coursemap/internal/pipeline"
	"github.com/dgallion1/coursemap/internal/remote"
	"github.com/dgallion1/coursemap/internal/render"
	"github.com/dgallion1/coursemap/internal/store"
)

// renderSubdir keeps CLI render artifacts apart from the page a running
// server serves at /screenshot.
const renderSubdir = "render"

func renderDir(dataDir string) string {
	return filepath.Join(dataDir, renderSubdir)
}

var (
	extractHTML     string
	extractNoSubmit bool
	extractNoRender bool
	extractFilename string
	extractControl  string
)

func init() {
	extractCmd.Flags().StringVar(&extractHTML, "html", "", "Read a saved page snapshot instead of opening the URL.")
	extractCmd.Flags().BoolVar(&extractNoSubmit, "no-submit", false, "Do not send the outline to SERVER_URL.")
	extractCmd.Flags().BoolVar(&extractNoRender, "no-render", false, "Skip the mind-map image.")
	extractCmd.Flags().StringVarP(&extractFilename, "filename", "o", "", "Image file name (default <course>.png).")
	extractCmd.Flags().StringVar(&extractControl, "control-url", "", "DevTools URL of a running browser to use.")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <course-url> [--html <page.html>]",
	Short: "Extracts a course outline from a course page and maps it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pageURL := strings.TrimSpace(args[0])
		if pageURL == "" {
			return errors.New("a course URL is required, even with --html")
		}

		builder, err := newBuilder()
		if err != nil {
			return err
		}
		st, err := store.Open(cfg.DataDir)
		if err != nil {
			return err
		}
		defer st.Close()

		deps := pipeline.Deps{
			Extractor: extract.New(extract.Options{
				PollInterval: cfg.ExpandPollInterval,
				Timeout:      cfg.ExpandTimeout,
			}, log),
			Builder: builder,
			Local:   st.Outlines(),
		}
		if cfg.ServerURL != "" && !extractNoSubmit {
			deps.Remote = remote.NewClient(cfg.ServerURL, cfg.SubmitTimeout, log)
		}

		var b *browser.Browser
		if extractHTML == "" || !extractNoRender {
			b, err = browser.Launch(ctx, browser.Options{
				Headless:   cfg.BrowserHeadless,
				Bin:        cfg.BrowserBin,
				ControlURL: extractControl,
			}, log)
			if err != nil {
				return err
			}
			defer b.Close()
		}

		if !extractNoRender {
			artifacts, err := render.NewArtifacts(renderDir(cfg.DataDir), render.PageOptions{Watermark: cfg.Watermark})
			if err != nil {
				return err
			}
			deps.Render = render.NewRenderer(artifacts, render.RodOpener{Browser: b.Rod()},
				render.RendererOptions{Settle: cfg.RenderSettle}, log)
		}

		var p page.Page
		if extractHTML != "" {
			f, err := os.Open(extractHTML)
			if err != nil {
				return fmt.Errorf("open snapshot: %w", err)
			}
			defer f.Close()
			if p, err = page.ParseHTML(f, pageURL); err != nil {
				return err
			}
		} else {
			live, err := page.Open(ctx, b.Rod(), pageURL)
			if err != nil {
				return err
			}
			defer live.Close()
			p = live
		}

		orch := pipeline.NewOrchestrator(deps, pipeline.Options{
			CourseHost:       cfg.CourseHost,
			CoursePathPrefix: cfg.CoursePathPrefix,
			Filename:         extractFilename,
		}, log)
		out := orch.Run(ctx, p)

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, out.StatusMessage())
		if msg := out.RemoteMessage(); msg != "" {
			fmt.Fprintln(w, msg)
		}
		if out.Remote.Locator != "" {
			fmt.Fprintf(w, "remote: %s\n", out.Remote.Locator)
		}
		if out.Render.Path != "" {
			fmt.Fprintf(w, "image: %s\n", out.Render.Path)
		} else if out.Render.Err != nil {
			fmt.Fprintf(w, "image not rendered: %v\n", out.Render.Err)
		}
		return out.Err
	},
}
