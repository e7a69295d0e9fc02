package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive toast viewport",
	Long: `Launch the interactive terminal viewport.

Toasts stack at the configured corner and close when their timeout expires.

Key bindings:
  n / N       New toast / new danger toast
  j/k, ↑/↓    Select toast
  d           Dismiss selected toast
  D           Dismiss newest toast
  p           Pause or resume the selected toast's timer
  x           Clear all toasts
  c           Copy selected toast to clipboard
  ?           Show help
  q           Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()
	s.start(cmd.Context(), configPath())

	return tui.Run(tui.RunOptions{
		Viewport: s.viewport,
		Registry: s.reg,
	})
}
