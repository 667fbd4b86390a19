package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/ayusman/noelvortex/internal/app"
	"github.com/ayusman/noelvortex/internal/capture"
	"github.com/ayusman/noelvortex/internal/config"
	"github.com/ayusman/noelvortex/internal/detector"
	"github.com/ayusman/noelvortex/internal/hook"
	"github.com/ayusman/noelvortex/internal/interaction"
	"github.com/ayusman/noelvortex/internal/server"
	"github.com/ayusman/noelvortex/internal/store"
	"github.com/ayusman/noelvortex/internal/tray"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address (overrides NOELVORTEX_ADDR)")
	dataDir := flag.String("data", "", "data directory (overrides NOELVORTEX_DATA_DIR)")
	envFile := flag.String("env", ".env", "optional .env file")
	flag.Parse()

	// Flags win over the environment; setting them first keeps the
	// directories derived from the data dir consistent.
	if *addr != "" {
		os.Setenv("NOELVORTEX_ADDR", *addr)
	}
	if *dataDir != "" {
		os.Setenv("NOELVORTEX_DATA_DIR", *dataDir)
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		slog.Error("Invalid log level", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(cfg); err != nil {
		slog.Error("Exiting", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	slog.Info("NoelVortex - gesture-driven photo tree")

	for _, dir := range []string{cfg.DataDir, cfg.PhotoDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	tuning := interaction.DefaultTuning()
	if cfg.TuningFile != "" {
		if tuning, err = config.LoadTuning(cfg.TuningFile); err != nil {
			return err
		}
		slog.Info("Loaded tuning profile", "path", cfg.TuningFile)
	}

	detCfg := detector.DefaultConfig()
	detCfg.MaxHands = cfg.MaxHands
	detCfg.ScriptPath = cfg.GestureScript

	a := app.New(app.Config{
		Store: st,
		Camera: capture.Config{
			DeviceID: cfg.CameraID,
			Width:    cfg.CameraWidth,
			Height:   cfg.CameraHeight,
			FPS:      cfg.CameraFPS,
		},
		Detector: detCfg,
		Tuning:   tuning,
		PhotoDir: cfg.PhotoDir,
	})

	hooks := hook.NewManager(cfg.HookDir)
	if err := hooks.Discover(); err != nil {
		slog.Warn("Hook discovery failed", "dir", cfg.HookDir, "error", err)
	}
	dispatcher := hook.NewDispatcher(hooks, hook.NewExecutor(cfg.HookTimeout), 0)
	defer dispatcher.Close()
	a.OnEvent(dispatcher.Handler(a.Session().ID()))

	if err := a.Start(); err != nil {
		return fmt.Errorf("start frame loop: %w", err)
	}
	defer a.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TuningFile != "" {
		go func() {
			err := config.WatchTuning(ctx, cfg.TuningFile, func(t interaction.Tuning) {
				a.Submit(interaction.SetTuning{Tuning: t})
				slog.Info("Tuning reloaded", "path", cfg.TuningFile)
			})
			if err != nil {
				slog.Warn("Tuning watcher stopped", "error", err)
			}
		}()
	}

	webDir := cfg.WebDir
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		slog.Info("Serving static files", "dir", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		PhotoDir:  cfg.PhotoDir,
		Store:     st,
		App:       a,
	})

	if !cfg.Tray {
		slog.Info("Starting server", "addr", cfg.Addr)
		return srv.ListenAndServe(ctx, cfg.Addr)
	}

	// The tray must own the main goroutine.
	t := tray.New()
	t.SetCameraEnabled(a.CameraEnabled())
	t.OnCamera(a.SetCameraEnabled)
	t.OnMode(a.SetMode)
	t.OnOpen(func() { openBrowser(viewerURL(cfg.Addr)) })
	t.OnQuit(stop)
	a.OnEvent(t.HandleEvent)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe(ctx, cfg.Addr)
		t.Quit()
	}()
	t.Run()
	stop()
	return <-errCh
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}
	return ""
}

func viewerURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		slog.Warn("Failed to open browser", "url", url, "error", err)
	}
}
