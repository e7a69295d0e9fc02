package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/adapter/input"
	"github.com/jmylchreest/toasty/internal/adapter/output"
	"github.com/jmylchreest/toasty/internal/model"
	"github.com/jmylchreest/toasty/internal/registry"
)

var feedOpts struct {
	format   string
	template string
	once     bool
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Push toasts from stdin and print the registry as it changes",
	Long: `Read toasts from stdin as JSON lines, or as one JSON array, and push
each one as it arrives.

Every registry change prints a snapshot of the active toasts. The command
exits once stdin is exhausted and every toast has timed out.

Each line is an object with a required title:
  {"title": "Saved", "description": "3 files", "variant": "default"}

Examples:
  # Two toasts, printed as JSON on every change
  printf '%s\n' '{"title":"Saved"}' '{"title":"Error","variant":"danger"}' \
    | toasty feed --format json

  # Read a JSON array and print one snapshot
  echo '[{"title":"Saved"}]' | toasty feed --once`,
	RunE: runFeed,
}

func init() {
	rootCmd.AddCommand(feedCmd)

	feedCmd.Flags().StringVarP(&feedOpts.format, "format", "f", "",
		"Output format (plain, json, yaml, ids, dmenu, table; default from config)")
	feedCmd.Flags().StringVar(&feedOpts.template, "template", "",
		"Custom Go template for plain output")
	feedCmd.Flags().BoolVar(&feedOpts.once, "once", false,
		"Read all of stdin, push it, print one snapshot and exit")
}

func runFeed(cmd *cobra.Command, args []string) error {
	if stdinIsTerminal() {
		return fmt.Errorf("stdin is a terminal; pipe JSON toasts into toasty feed")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	formatter, err := feedFormatter()
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	adapter := input.NewStdinAdapter(logger)

	if feedOpts.once {
		ctx = registry.NewContext(ctx, s.reg)
		entries, err := adapter.Read(ctx)
		if err != nil {
			return err
		}
		for _, d := range entries {
			if _, err := registry.Push(ctx, d); err != nil {
				return err
			}
		}
		return printSnapshot(ctx, formatter)
	}

	changes := s.viewport.Subscribe()
	ctx = s.start(ctx, configPath())

	streamDone := make(chan error, 1)
	go func() {
		streamDone <- adapter.Stream(ctx, nil, func(d model.PushData) {
			if _, err := registry.Push(ctx, d); err != nil {
				logger.Error("failed to push toast", "error", err)
			}
		})
	}()

	drained := false
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if err := printSnapshot(ctx, formatter); err != nil {
				return err
			}
			if drained && s.reg.Count() == 0 {
				return nil
			}

		case err := <-streamDone:
			if err != nil {
				return err
			}
			drained = true
			streamDone = nil
			logger.Debug("stdin exhausted", "remaining", s.reg.Count())
			if s.reg.Count() == 0 {
				return nil
			}

		case <-ctx.Done():
			return nil
		}
	}
}

// feedFormatter builds the output formatter from flags and config.
func feedFormatter() (output.Formatter, error) {
	format := feedOpts.format
	if format == "" {
		format = cfg.Output.Format
	}
	tmpl := feedOpts.template
	if tmpl == "" {
		tmpl = cfg.Output.Template
	}

	formatter, err := output.NewFormatter(output.FormatType(format), output.FormatterOptions{Template: tmpl})
	if err != nil {
		return nil, fmt.Errorf("failed to create formatter: %w", err)
	}
	return formatter, nil
}

// printSnapshot writes the toasts of the registry bound to ctx.
func printSnapshot(ctx context.Context, formatter output.Formatter) error {
	toasts, err := registry.Current(ctx)
	if err != nil {
		return err
	}
	return formatter.Format(os.Stdout, toasts)
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
