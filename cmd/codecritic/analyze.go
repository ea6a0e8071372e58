package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/codecritic/internal/config"
	"github.com/dshills/codecritic/internal/engine"
	"github.com/dshills/codecritic/internal/render"
	"github.com/dshills/codecritic/internal/schema"
	"github.com/dshills/codecritic/internal/source"
)

// Exit codes.
const (
	exitFailUnder = 2
	exitInput     = 3
	exitInvalid   = 5
)

type analyzeFlags struct {
	format     string
	out        string
	configPath string
	failUnder  int
	redact     bool
	verbose    bool
}

func newAnalyzeCmd() *cobra.Command {
	f := &analyzeFlags{}
	d := config.Default()

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Score a .js, .jsx or .py file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.format, "format", d.Format, "Output format: auto, json, md or text")
	flags.StringVar(&f.out, "out", "", "Output file path (default: stdout)")
	flags.StringVar(&f.configPath, "config", "", "Configuration file (default: ./"+config.FileName+" when present)")
	flags.IntVar(&f.failUnder, "fail-under", d.FailUnder, "Exit 2 if the overall score is below this value")
	flags.BoolVar(&f.redact, "redact", d.Redact, "Mask secrets in quoted source lines")
	flags.BoolVar(&f.verbose, "verbose", false, "Log processing steps to stderr")

	return cmd
}

func runAnalyze(cmd *cobra.Command, path string, f *analyzeFlags) error {
	log := newLogger(cmd.ErrOrStderr(), f.verbose)

	// 1. Configuration
	cfg, err := config.Load(f.configPath, cmd.Flags())
	if err != nil {
		return exitError(exitInput, "invalid configuration: %v", err)
	}
	if cfg.File != "" {
		log.Debug().Str("config", cfg.File).Msg("loaded configuration")
	}

	// 2. Source
	doc, err := source.Load(path)
	if err != nil {
		var ext *source.UnsupportedExtensionError
		switch {
		case errors.As(err, &ext):
			return exitError(exitInput, "%v", err)
		case errors.Is(err, source.ErrNotText):
			return exitError(exitInput, "%s is not a readable text file", path)
		default:
			return exitError(exitInput, "failed to load source: %v", err)
		}
	}
	log.Debug().
		Str("file", doc.FilePath).
		Str("language", string(doc.Language)).
		Int("lines", len(doc.Lines)).
		Str("hash", doc.Hash).
		Msg("loaded source")

	// 3. Analysis
	res, err := engine.AnalyzeWith(doc.Text, string(doc.Language), cfg.Thresholds)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	log.Debug().
		Int("score", res.OverallScore).
		Int("findings", len(res.Findings)).
		Msg("analysis complete")

	// 4. Validation
	if errs := schema.Validate(res, len(doc.Lines)); len(errs) > 0 {
		for _, e := range errs {
			log.Error().Str("path", e.Path).Msg(e.Message)
		}
		return exitError(exitInvalid, "result failed validation (%d errors)", len(errs))
	}

	// 5. Output
	stdout := cmd.OutOrStdout()
	format := resolveFormat(cfg.Format, f.out, stdout)
	log.Debug().Str("format", format).Msg("rendering")

	var buf bytes.Buffer
	w := io.Writer(&buf)
	if f.out == "" {
		w = stdout
	}
	switch format {
	case "json":
		data, err := render.JSON(res)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	case "md":
		if _, err := io.WriteString(w, render.Markdown(res, doc, render.Options{Redact: cfg.Redact})); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	case "text":
		if err := render.Text(w, res, doc.FilePath); err != nil {
			return err
		}
	default:
		return exitError(exitInput, "unknown format: %s", format)
	}

	if f.out != "" {
		log.Debug().Str("out", f.out).Msg("writing output")
		if err := os.WriteFile(f.out, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	// 6. Exit code based on --fail-under
	if cfg.FailUnder > 0 && res.OverallScore < cfg.FailUnder {
		return exitError(exitFailUnder, "score %d is below --fail-under %d", res.OverallScore, cfg.FailUnder)
	}
	return nil
}

// resolveFormat turns "auto" into text for an interactive terminal and JSON
// for everything else.
func resolveFormat(format, out string, stdout io.Writer) string {
	if format != "auto" {
		return format
	}
	if out == "" && isTerminal(stdout) {
		return "text"
	}
	return "json"
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newLogger returns a console logger on w: debug level when verbose, warn
// otherwise.
func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: !isTerminal(w)}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}
