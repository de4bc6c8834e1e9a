// Package main provides the CLI entry point for xlpkg.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/ukaji3/xlpkg-go/pkg/xlpkg"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// config is the layout of the file named by --config.
type config struct {
	Read    xlpkg.Options        `yaml:"read"`
	Extract xlpkg.ExtractOptions `yaml:"extract"`
}

var (
	configPath string
	lazy       bool
	verbose    bool
	pretty     bool
	outputPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "xlpkg",
		Short: "Read, edit and write spreadsheet packages",
		Long: `xlpkg opens .xlsx packages, exports their content as JSON and applies
structural edits (row and column insertion or removal) that keep formulas,
merged ranges and defined names consistent.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file with read and extract options")
	rootCmd.PersistentFlags().BoolVar(&lazy, "lazy", false, "Parse sheets on first access")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug events to stderr")

	rootCmd.AddCommand(dumpCommand(), infoCommand(), copyCommand())
	rootCmd.AddCommand(editCommands()...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addOutputFlag(fs *pflag.FlagSet, usage string) {
	fs.StringVarP(&outputPath, "output", "o", "", usage)
}

// loadConfig merges the config file, if any, with the persistent flags.
func loadConfig() (config, func(), error) {
	var cfg config
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return cfg, nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, nil, fmt.Errorf("invalid config %s: %w", configPath, err)
		}
	}
	if lazy {
		cfg.Read.Mode = xlpkg.ModeLazy
	}

	logger := zap.NewNop()
	if verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return cfg, nil, err
		}
	}
	cfg.Read.Logger = logger
	return cfg, func() { _ = logger.Sync() }, nil
}

func openWorkbook(path string, opts xlpkg.Options) (*xlpkg.Workbook, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	wb, err := xlpkg.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return wb, nil
}

// writeOutput writes data to --output, or to stdout when it is unset.
func writeOutput(data []byte) error {
	if outputPath == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
