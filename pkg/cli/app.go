package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mchmarny/smecredit/pkg/config"
	"github.com/mchmarny/smecredit/pkg/logging"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName      = "smecredit"
	appConfigKey = "app-config"
	envFile      = ".env"

	formatJSON = "json"
	formatYAML = "yaml"

	flagDebug     = "debug"
	flagLogLevel  = "log-level"
	flagLogFile   = "log-file"
	flagFormat    = "format"
	flagConfigDir = "config-dir"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	errConfigNotInitialized = errors.New("app config not initialized")
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")
	loadEnvFile(envFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		stop()
		os.Exit(1)
	}
}

// loadEnvFile makes variables in path available to flag sources.
// Variables already set in the environment win.
func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		slog.Warn("error loading env file", "path", path, "error", err)
		return
	}
	slog.Debug("env file loaded", "path", path)
}

type appConfig struct {
	ConfigDir string
	Debug     bool
	Format    string
	Out       io.Writer

	closeLog func() error
}

func getConfig(cmd *cli.Command) (*appConfig, error) {
	cfg, ok := cmd.Root().Metadata[appConfigKey].(*appConfig)
	if !ok || cfg == nil {
		return nil, errConfigNotInitialized
	}
	return cfg, nil
}

// newApp builds the command tree. Flags hold parse state so every run
// gets its own tree.
func newApp() *cli.Command {
	return &cli.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "Probability of default and credit rating for SMEs",
		Metadata:              map[string]any{},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Usage:   "Prints verbose logs (optional, default: false)",
				Sources: cli.EnvVars("SME_DEBUG"),
			},
			&cli.StringFlag{
				Name:    flagLogLevel,
				Usage:   "Log level [debug, info, warn, error]",
				Value:   "info",
				Sources: cli.EnvVars("SME_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    flagLogFile,
				Usage:   "Also append all logs, including debug, to this file",
				Sources: cli.EnvVars("SME_LOG_FILE"),
			},
			&cli.StringFlag{
				Name:    flagFormat,
				Usage:   "Output format [json, yaml]",
				Value:   formatJSON,
				Sources: cli.EnvVars("SME_FORMAT"),
			},
			&cli.StringFlag{
				Name:    flagConfigDir,
				Usage:   "Directory with model_config, rating_scale and sector_config documents",
				Value:   config.DefaultDir,
				Sources: cli.EnvVars("SME_CONFIG_DIR"),
			},
		},
		Commands: []*cli.Command{
			newScoreCmd(),
			newInspectCmd(),
			newRatingCmd(),
			newInitCmd(),
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			closeLog, err := logging.Setup(logging.Options{
				Level:  cmd.String(flagLogLevel),
				Debug:  cmd.Bool(flagDebug),
				RunLog: cmd.String(flagLogFile),
			})
			if err != nil {
				return ctx, fmt.Errorf("initializing logging: %w", err)
			}

			format := strings.ToLower(strings.TrimSpace(cmd.String(flagFormat)))
			switch format {
			case formatJSON:
			case formatYAML, "yml":
				format = formatYAML
			default:
				return ctx, fmt.Errorf("unsupported output format: %s", format)
			}

			out := cmd.Root().Writer
			if out == nil {
				out = os.Stdout
			}

			cmd.Root().Metadata[appConfigKey] = &appConfig{
				ConfigDir: cmd.String(flagConfigDir),
				Debug:     cmd.Bool(flagDebug),
				Format:    format,
				Out:       out,
				closeLog:  closeLog,
			}
			return ctx, nil
		},
		After: func(_ context.Context, cmd *cli.Command) error {
			if cfg, err := getConfig(cmd); err == nil && cfg.closeLog != nil {
				return cfg.closeLog()
			}
			return nil
		},
	}
}

func encode(cfg *appConfig, v any) error {
	if cfg.Format == formatYAML {
		e := yaml.NewEncoder(cfg.Out)
		defer e.Close()
		return e.Encode(v)
	}
	e := json.NewEncoder(cfg.Out)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
