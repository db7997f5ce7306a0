// Command shaderchain inspects shader presets and previews them on a test
// pattern or still image.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alphanu1/MME4CRT-v2.0/shader"
	"github.com/alphanu1/MME4CRT-v2.0/storage"
)

const appName = "shaderchain"

// options are the global flags and what they resolve to.
type options struct {
	configPath string
	logLevel   string

	config *storage.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           appName,
		Short:         "Multi-pass shader chain tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLogLevel(o.logLevel)
			if err != nil {
				return err
			}
			shader.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return o.loadConfig()
		},
	}
	root.PersistentFlags().StringVar(&o.configPath, "config", "", "config file (default is config.json in the data directory)")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	root.AddCommand(newInspectCmd(o), newViewCmd(o), newConfigCmd(o))
	return root
}

func (o *options) loadConfig() error {
	storage.Init(appName)
	if o.configPath == "" {
		path, err := storage.GetConfigPath()
		if err != nil {
			return err
		}
		o.configPath = path
	}

	cfg, err := storage.LoadConfigFile(o.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	for _, problem := range storage.ValidateConfig(cfg) {
		shader.Logger().Warn("config problem corrected", "problem", problem)
	}
	o.config = storage.CorrectConfig(cfg)
	return nil
}

// saveConfig writes the current settings back to the config file.
func (o *options) saveConfig() error {
	if err := storage.SaveConfigFile(o.configPath, o.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
