package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/dbus"
	"github.com/jmylchreest/toasty/internal/tui"
)

var serveOpts struct {
	withTUI bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Receive desktop notifications over D-Bus as toasts",
	Long: `Claim org.freedesktop.Notifications on the session bus and turn every
notification into a toast.

Critical notifications become danger toasts. When a toast closes, the
sending application receives NotificationClosed with the reason it closed
for (expired, dismissed or closed).

Without --tui the viewport runs headless and logs each change.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveOpts.withTUI, "tui", false,
		"Render the viewport in the terminal while serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The bus name is claimed with ReplaceExisting, so a second instance
	// would silently take over from the first.
	lockPath := serveLockPath()
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another toasty serve is running (lock %s)", lockPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release serve lock", "error", err)
		}
	}()

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	server := dbus.NewServer(s.reg, logger)
	server.SetServerInfo(dbus.ServerInfo{
		Name:        "toasty",
		Vendor:      "toasty",
		Version:     version,
		SpecVersion: "1.2",
	})
	s.viewport.SetExpireCallback(server.MarkExpired)

	changes := s.viewport.Subscribe()
	ctx = s.start(ctx, configPath())

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start D-Bus bridge: %w", err)
	}
	defer func() {
		if err := server.Stop(); err != nil {
			logger.Warn("failed to stop D-Bus bridge", "error", err)
		}
	}()

	if serveOpts.withTUI {
		return tui.Run(tui.RunOptions{
			Viewport: s.viewport,
			Registry: s.reg,
		})
	}

	logger.Info("serving notifications", "pid", os.Getpid())
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			visible := s.viewport.Visible()
			ids := make([]string, len(visible))
			for i, st := range visible {
				ids[i] = st.Toast.ID
			}
			logger.Info("viewport changed",
				"visible", ids,
				"hidden", s.viewport.Hidden(),
				"total", s.reg.Count(),
			)
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		}
	}
}

// serveLockPath returns the single-instance lock file for serve.
func serveLockPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "toasty-serve.lock")
}
