package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ha1tch/mapview/pkg/config"
)

var version = "0.3.0"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
	logger     = slog.Default()
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mapview",
		Short: "mapview - inspect and render signal map scenes",
		Long: brand.Sprint("mapview") + " - inspect and render signal map scenes\n" +
			subtle.Sprint("Scenes are .toml, .json or .mapz files"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)

			var err error
			if configPath != "" {
				cfg, err = config.LoadFile(configPath)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return err
			}
			logger.Debug("config loaded", "kind", cfg.View.Kind, "format", cfg.Export.Format)
			return nil
		},
	}
	root.SetVersionTemplate("mapview {{ .Version }}\n")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default "+config.Path()+")")

	root.AddCommand(
		renderCmd(),
		infoCmd(),
		validateCmd(),
		connectCmd(),
	)
	return root
}
