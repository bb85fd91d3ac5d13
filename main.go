package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"lanes2svg/internal/config"
	"lanes2svg/internal/diagram"
	"lanes2svg/internal/logging"
	"lanes2svg/internal/render"
	"lanes2svg/internal/session"
	"lanes2svg/internal/store"
)

// options are the command line settings. The *Set fields record which
// overrides were given explicitly.
type options struct {
	diagramPath string
	configPath  string
	outputPath  string
	statePath   string
	unit        string
	width       int
	noCompress  bool
	threshold   float64
	watch       bool
	debug       bool

	widthSet     bool
	thresholdSet bool
}

func main() {
	opts := options{}
	flag.BoolVar(&opts.debug, "debug", false, "Enable debug mode for verbose output")
	flag.StringVar(&opts.diagramPath, "diagram", "", "Diagram file, .yaml/.yml or .csv (required)")
	flag.StringVar(&opts.configPath, "config", "", "YAML or TOML configuration file (optional)")
	flag.StringVar(&opts.outputPath, "output", "", "Output SVG filename (optional)")
	flag.IntVar(&opts.width, "width", 0, "SVG width in pixels (optional)")
	flag.BoolVar(&opts.noCompress, "no-compress", false, "Draw idle time at full length")
	flag.Float64Var(&opts.threshold, "threshold", 0, "Collapse idle spans longer than this many milliseconds")
	flag.StringVar(&opts.unit, "unit", "", "Time unit, e.g. seconds or minutes/seconds")
	flag.StringVar(&opts.statePath, "state", "", "SQLite file that keeps zoom and compression between runs")
	flag.BoolVar(&opts.watch, "watch", false, "Re-render when the diagram or config file changes")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		fmt.Fprintf(os.Stderr, "  --debug             Enable debug mode for verbose output\n")
		fmt.Fprintf(os.Stderr, "  --diagram <file>    Diagram file, .yaml/.yml or .csv (required)\n")
		fmt.Fprintf(os.Stderr, "  --config <file>     YAML or TOML configuration file (optional)\n")
		fmt.Fprintf(os.Stderr, "  --output <file>     Output SVG filename (optional)\n")
		fmt.Fprintf(os.Stderr, "  --width <px>        SVG width in pixels (optional)\n")
		fmt.Fprintf(os.Stderr, "  --no-compress       Draw idle time at full length\n")
		fmt.Fprintf(os.Stderr, "  --threshold <ms>    Collapse idle spans longer than this\n")
		fmt.Fprintf(os.Stderr, "  --unit <unit>       Time unit, e.g. seconds or minutes/seconds\n")
		fmt.Fprintf(os.Stderr, "  --state <file>      SQLite file that keeps zoom and compression between runs\n")
		fmt.Fprintf(os.Stderr, "  --watch             Re-render when the diagram or config file changes\n")
		fmt.Fprintf(os.Stderr, "\nIf no config file is specified, default settings will be used.\n")
		fmt.Fprintf(os.Stderr, "If no output file is specified, the diagram filename with .svg extension will be used.\n")
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s --diagram plan.yaml --config style.toml --output plan.svg\n", os.Args[0])
	}

	flag.Parse()
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			opts.widthSet = true
		case "threshold":
			opts.thresholdSet = true
		}
	})

	logging.Init(os.Stderr, opts.debug)

	if opts.diagramPath == "" {
		fmt.Fprintf(os.Stderr, "Error: diagram file is required. Use --diagram to specify the file.\n\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if opts.watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		paths := []string{opts.diagramPath}
		if opts.configPath != "" {
			paths = append(paths, opts.configPath)
		}
		fmt.Printf("Watching %s for changes (Ctrl+C to stop)\n", strings.Join(paths, ", "))

		err := watchFiles(ctx, paths, func() {
			if err := run(opts); err != nil {
				logging.Error("re-render failed", "error", err)
			}
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error watching files: %v\n", err)
			os.Exit(1)
		}
	}
}

// run loads settings and the diagram, renders one SVG and writes it.
func run(opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	// --no-compress applies to this render only and is not persisted.
	keepCompression := cfg.Compression.Enabled
	if err := applyOverrides(&cfg, opts); err != nil {
		return fmt.Errorf("in command line options: %w", err)
	}
	logging.Debug("configuration loaded",
		"width", cfg.Layout.Width,
		"compression", cfg.Compression.Enabled,
		"threshold", cfg.Compression.Threshold)

	d, err := diagram.Load(opts.diagramPath)
	if err != nil {
		return fmt.Errorf("loading diagram: %w", err)
	}
	fmt.Printf("Loaded %d boxes in %d lanes from %s\n", len(d.Boxes), len(d.Lanes), opts.diagramPath)

	s, err := session.New(d, cfg)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	var views *store.Store
	if opts.statePath != "" {
		views, err = store.Open(opts.statePath)
		if err != nil {
			return fmt.Errorf("opening state file: %w", err)
		}
		defer views.Close()

		st, err := views.Load(d.Name)
		switch {
		case errors.Is(err, store.ErrNotFound):
			logging.Debug("no saved view state", "diagram", d.Name)
		case err != nil:
			return fmt.Errorf("reading view state: %w", err)
		default:
			s.RestoreViewState(st)
			keepCompression = st.CompressionEnabled
			logging.Debug("view state restored", "diagram", d.Name, "scale", st.View.Scale, "fit", st.View.FitMode)
		}
	}
	if opts.noCompress {
		s.SetCompression(false)
	}

	svg := render.SVG(s)
	outputPath := getOutputFilename(opts.diagramPath, opts.outputPath)
	if err := os.WriteFile(outputPath, []byte(svg), 0644); err != nil {
		return fmt.Errorf("writing SVG file: %w", err)
	}

	if views != nil {
		st := s.ViewState()
		st.CompressionEnabled = keepCompression
		if err := views.Save(d.Name, st); err != nil {
			return fmt.Errorf("saving view state: %w", err)
		}
	}

	fmt.Printf("Diagram SVG generated successfully: %s\n", outputPath)
	return nil
}

// applyOverrides copies explicit command line settings into cfg and
// validates the result.
func applyOverrides(cfg *config.Config, opts options) error {
	if opts.widthSet {
		cfg.Layout.Width = opts.width
	}
	if opts.noCompress {
		cfg.Compression.Enabled = false
	}
	if opts.thresholdSet {
		cfg.Compression.Threshold = opts.threshold
	}
	if opts.unit != "" {
		base, sub, _ := strings.Cut(opts.unit, "/")
		cfg.Time.BaseUnit = strings.TrimSpace(base)
		cfg.Time.SubUnit = strings.TrimSpace(sub)
	}
	return cfg.Validate()
}

// getOutputFilename returns outputFile when set. Otherwise it derives the
// name from the diagram file by replacing the extension with .svg, so
// "plan.yaml" becomes "plan.svg".
func getOutputFilename(diagramFile, outputFile string) string {
	if outputFile != "" {
		return outputFile
	}

	base := filepath.Base(diagramFile)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + ".svg"
}
