package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-artifact-index/config"
	"github.com/gcbaptista/go-artifact-index/internal/logging"
	"github.com/gcbaptista/go-artifact-index/services"
)

const indexFileName = "index.json"

// --- Global Command Variables ---
var (
	configPath string
	logFormat  string
	verbose    bool

	settings *config.Settings
	logger   *zap.Logger

	port    int
	dataDir string

	query services.ArtifactQuery

	rootCmd = &cobra.Command{
		Use:           "artifact-index",
		Short:         "Index and query local artifact registries",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured registries over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe, // Defined in cmd_serve.go
	}

	regenerateCmd = &cobra.Command{
		Use:   "regenerate-index <registry-dir>",
		Short: "Rebuild the index of a registry directory and write it next to the manifests",
		Args:  cobra.ExactArgs(1),
		RunE:  runRegenerate, // Defined in cmd_index.go
	}

	findCmd = &cobra.Command{
		Use:   "find <registry-dir>",
		Short: "Query the index of a registry directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runFind, // Defined in cmd_index.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML settings file")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format, json or text")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	serveCmd.Flags().IntVar(&port, "port", 0, fmt.Sprintf("Port to listen on (default %d)", config.DefaultPort))
	serveCmd.Flags().StringVar(&dataDir, "data-dir", "", fmt.Sprintf("Where indexes are persisted (default %q)", config.DefaultDataDir))

	findCmd.Flags().StringVar(&query.ID, "id", "", "Identity or short name")
	findCmd.Flags().StringVar(&query.IDPrefix, "id-prefix", "", "Identity starts with")
	findCmd.Flags().StringVar(&query.IDSuffix, "id-suffix", "", "Identity ends with")
	findCmd.Flags().StringVar(&query.Pattern, "pattern", "", "Regular expression over the identity")
	findCmd.Flags().StringVar(&query.Version, "version", "", "Exact version")
	findCmd.Flags().StringVar(&query.VersionRange, "range", "", `Version range, e.g. ">=1.0.0 <2.0.0"`)
	findCmd.Flags().StringVar(&query.VersionAbove, "newer-than", "", "Strictly newer than this version")
	findCmd.Flags().StringVar(&query.VersionBelow, "older-than", "", "Strictly older than this version")
	findCmd.Flags().StringVar(&query.Keyword, "keyword", "", "Word of the summary")
	findCmd.Flags().StringVar(&query.Tool, "tool", "", "Exported tool name")
	findCmd.Flags().StringVar(&query.ToolPath, "tool-path", "", "Exported tool path ends with")
	findCmd.Flags().IntVar(&query.Limit, "limit", 0, "Maximum number of results, 0 for all")

	rootCmd.AddCommand(serveCmd, regenerateCmd, findCmd)
}

// setup loads settings, lets flags override them and builds the logger.
func setup(cmd *cobra.Command) error {
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		settings = loaded
	} else {
		settings = &config.Settings{}
		settings.ApplyDefaults()
	}

	if cmd.Flags().Changed("port") {
		settings.Port = port
	}
	if cmd.Flags().Changed("data-dir") {
		settings.DataDir = dataDir
	}
	if logFormat != "" {
		settings.LogFormat = logFormat
	}
	if verbose {
		settings.Verbose = true
	}

	logConfig := logging.Config{
		Name:    "artifact-index",
		Format:  logging.Format(settings.LogFormat),
		Color:   logging.ColorAuto,
		Verbose: settings.Verbose,
	}
	if err := logConfig.Validate(); err != nil {
		return err
	}
	logger = logging.New(logConfig)
	return nil
}

func indexPathFor(dir string) string {
	return filepath.Join(dir, indexFileName)
}
