// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the codebinder CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/codebinder/internal/logging"
	"github.com/pdiddy/codebinder/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built once in the root PersistentPreRunE and shared by all
// subcommands.
var logger *zap.Logger

// rootCmd is the base command for the codebinder CLI.
var rootCmd = &cobra.Command{
	Use:   "codebinder",
	Short: "Bind a folder's code files into PDF or TXT artifacts",
	Long: `codebinder scans a folder for files on an extension allow-list, optionally
runs each file through an external code formatter chosen by extension, and
exports the results as TXT or PDF. Single mode combines everything into one
artifact; separate mode writes one artifact per file.

Formatters are delegated entirely to external binaries (gofmt, clang-format,
and friends); a missing binary degrades gracefully to unformatted export.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("reading flags: %w", err)
		}
		logger, err = logging.New(verbose, version)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./codebinder.yaml or ~/.config/codebinder/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("codebinder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "codebinder"))
		}
	}

	viper.SetEnvPrefix("CODEBINDER")
	viper.AutomaticEnv()

	defaults := types.DefaultConfig()
	viper.SetDefault("scan.extensions", defaults.Scan.Extensions)
	viper.SetDefault("scan.recursive", defaults.Scan.Recursive)
	viper.SetDefault("scan.exclude", defaults.Scan.Exclude)
	viper.SetDefault("scan.max_file_size_kb", defaults.Scan.MaxFileSizeKB)
	viper.SetDefault("format.enabled", defaults.Format.Enabled)
	viper.SetDefault("export.mode", string(defaults.Export.Mode))
	viper.SetDefault("export.format", string(defaults.Export.Format))
	viper.SetDefault("export.output_dir", defaults.Export.OutputDir)
	viper.SetDefault("export.font_file", defaults.Export.FontFile)
	viper.SetDefault("export.font_size", defaults.Export.FontSize)
	viper.SetDefault("export.manifest", defaults.Export.Manifest)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// resolveConfig merges defaults, config file, environment, and the
// calling command's flags into one pipeline configuration.
func resolveConfig(cmd *cobra.Command) types.PipelineConfig {
	cfg := types.PipelineConfig{
		Scan: types.ScanConfig{
			Extensions:    viper.GetStringSlice("scan.extensions"),
			Recursive:     viper.GetBool("scan.recursive"),
			Exclude:       viper.GetStringSlice("scan.exclude"),
			MaxFileSizeKB: viper.GetInt("scan.max_file_size_kb"),
		},
		Format: types.FormatConfig{
			Enabled: viper.GetBool("format.enabled"),
		},
		Export: types.ExportConfig{
			Mode:      types.ExportMode(viper.GetString("export.mode")),
			Format:    types.ArtifactFormat(viper.GetString("export.format")),
			OutputDir: viper.GetString("export.output_dir"),
			FontFile:  viper.GetString("export.font_file"),
			FontSize:  viper.GetFloat64("export.font_size"),
			Manifest:  viper.GetBool("export.manifest"),
		},
	}

	var rules []types.FormatRule
	if err := viper.UnmarshalKey("format.rules", &rules); err == nil && len(rules) > 0 {
		cfg.Format.Rules = rules
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		mode, _ := flags.GetString("mode")
		cfg.Export.Mode = types.ExportMode(mode)
	}
	if flags.Changed("format") {
		f, _ := flags.GetString("format")
		cfg.Export.Format = types.ArtifactFormat(f)
	}
	if flags.Changed("output-dir") {
		cfg.Export.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("no-recursive") {
		noRec, _ := flags.GetBool("no-recursive")
		cfg.Scan.Recursive = !noRec
	}
	if flags.Changed("no-format") {
		noFmt, _ := flags.GetBool("no-format")
		cfg.Format.Enabled = !noFmt
	}
	if flags.Changed("ext") {
		cfg.Scan.Extensions, _ = flags.GetStringSlice("ext")
	}
	if flags.Changed("exclude") {
		cfg.Scan.Exclude, _ = flags.GetStringSlice("exclude")
	}
	if flags.Changed("manifest") {
		cfg.Export.Manifest, _ = flags.GetBool("manifest")
	}

	return cfg
}

func main() {
	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}
