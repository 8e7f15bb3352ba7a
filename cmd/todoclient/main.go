// todoclient is a terminal client for a remote per-user todo collection.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	fakehttp "todoclient/internal/adapter/http"
	"todoclient/internal/adapter/http/client"
	"todoclient/internal/adapter/telemetry"
	"todoclient/internal/adapter/tui"
	"todoclient/internal/core/domain"
	"todoclient/internal/core/service"
	"todoclient/pkg/config"
)

var (
	version  = "1.0.0"
	cfgFile  string
	logLevel string
	userID   int
	apiURL   string
	seedUser int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "todoclient",
	Short:         "Terminal client for a remote todo collection",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the interactive todo list",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClient(cmd.Context())
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the collection once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd.Context())
	},
}

var serveFakeCmd = &cobra.Command{
	Use:   "serve-fake",
	Short: "Serve an in-memory remote collection for development",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFake(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("todoclient %s\n", version)
		fmt.Printf("Go version: %s\n", runtime.Version())
		fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().IntVar(&userID, "user-id", 0, "id of the user whose collection is shown")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "base url of the remote collection")

	serveFakeCmd.Flags().IntVar(&seedUser, "seed-user", 0, "create a few sample todos for this user id")

	rootCmd.AddCommand(runCmd, listCmd, serveFakeCmd, versionCmd)
}

func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if userID != 0 {
		cfg.UserID = userID
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}

	return cfg, cfg.Validate()
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

type app struct {
	cfg       *config.AppConfig
	logger    *config.Logger
	telemetry *telemetry.Container
	session   *service.Session
}

func newApp(ctx context.Context, cfg *config.AppConfig) (*app, error) {
	logger, err := config.NewLogger(cfg.Telemetry.ServiceName, cfg.Log)
	if err != nil {
		return nil, err
	}

	container, err := telemetry.NewContainer(ctx, cfg.Telemetry, cfg.Environment, logger)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	remote, err := client.New(client.Options{
		BaseURL: cfg.APIURL,
		UserID:  cfg.UserID,
		Timeout: cfg.RequestTimeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	session := service.NewSession(remote, service.SessionOptions{
		UserID:          cfg.UserID,
		NotificationTTL: cfg.NotificationTTL,
		Probe:           container.NewTelemetryProbe(cfg.UserID),
		Logger:          logger,
	})

	return &app{cfg: cfg, logger: logger, telemetry: container, session: session}, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.telemetry.Shutdown(ctx); err != nil {
		a.logger.ErrorWithTrace(ctx, "Telemetry shutdown failed", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func runClient(parent context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// the screen belongs to the TUI, so logs go to a file
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(os.TempDir(), "todoclient.log")
	}

	ctx, stop := signalContext(parent)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	a.logger.InfoWithTrace(ctx, "Client starting",
		zap.Int("user_id", cfg.UserID),
		zap.String("api_url", cfg.APIURL),
		zap.Bool("enabled", cfg.Enabled()))

	err = tui.Run(ctx, a.session)
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func runList(parent context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Enabled() {
		return fmt.Errorf("user id is not configured: set TODO_USER_ID or --user-id")
	}

	ctx, stop := signalContext(parent)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.session.Load(ctx); err != nil {
		kind, _ := domain.KindOf(err)
		return fmt.Errorf("%s: %w", kind.Message(), err)
	}

	view := a.session.View()
	for _, row := range view.Rows {
		box := "[ ]"
		if row.Completed() {
			box = "[x]"
		}
		fmt.Printf("%s %d %s\n", box, row.Todo.ID, row.Title())
	}
	fmt.Println(view.ItemsLeft())

	return nil
}

func runFake(parent context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(parent)
	defer stop()

	logger, err := config.NewLogger(cfg.Telemetry.ServiceName+"-fake", cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	container, err := telemetry.NewContainer(ctx, cfg.Telemetry, cfg.Environment, logger)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer container.Shutdown(context.WithoutCancel(ctx))

	var seed []domain.Todo
	if seedUser > 0 {
		seed = []domain.Todo{
			{ID: 1, UserID: seedUser, Title: "Learn Go", Completed: true},
			{ID: 2, UserID: seedUser, Title: "Write the client"},
			{ID: 3, UserID: seedUser, Title: "Ship it"},
		}
	}

	return fakehttp.StartFakeServer(ctx, cfg, logger, container.ServerMetrics, seed...)
}
