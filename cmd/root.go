package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/manuel1618/mpcforces-extractor/internal/config"
	"github.com/manuel1618/mpcforces-extractor/internal/logging"
	"github.com/manuel1618/mpcforces-extractor/internal/version"
)

var (
	// Persistent options
	configFile string
	logLevel   string
	devLogs    bool
	blockSize  int

	// Input files, shared by the subcommands that read them
	modelFile string
	mpcFile   string
	spcFile   string
)

var rootCmd = &cobra.Command{
	Use:   "mpcforces",
	Short: "MPC and SPC force extraction tool",
	Long: `mpcforces - MPC/SPC Force Extractor

A CLI tool that splits a finite element model into its connected parts
and reports how rigid element (RBE2/RBE3) forces and SPC reactions
distribute over them, for every subcase of a solver run.

This tool helps analysts:
  - Sum MPC slave forces per connected part
  - Group SPCs into connected clusters and sum their reactions
  - Combine subcases with load factors
  - Visualize parts in HyperMesh (TCL) or as an image

Inputs are a fixed-width bulk data file and the MPC/SPC force reports.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println()
		fmt.Println("  ╔═══════════════════════════════════════════════════════════╗")
		fmt.Println("  ║                                                           ║")
		fmt.Printf("  ║   mpcforces v%-45s║\n", version.Version)
		fmt.Println("  ║   MPC/SPC Force Extractor                                 ║")
		fmt.Println("  ║                                                           ║")
		fmt.Println("  ╚═══════════════════════════════════════════════════════════╝")
		fmt.Println()
		fmt.Println("  Splits a model into connected parts and sums constraint")
		fmt.Println("  forces per part and per subcase.")
		fmt.Println()
		fmt.Println("  Features:")
		fmt.Println("    • RBE2/RBE3 slave force aggregation per connected part")
		fmt.Println("    • SPC clustering and reaction sums")
		fmt.Println("    • Load combinations over subcases")
		fmt.Println("    • Summary, HyperMesh TCL and JSON part map output")
		fmt.Println()
		fmt.Println("  Use 'mpcforces --help' to see available commands.")
		fmt.Println()
		fmt.Println("  ─────────────────────────────────────────────────────────────")
		fmt.Printf("  Copyright © %s %s.\n", version.Year, version.Author)
		fmt.Println()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&devLogs, "dev", false, "Human-readable development logs")
	rootCmd.PersistentFlags().IntVarP(&blockSize, "block-size", "b", 8, "Column width of the model file")
}

// addInputFlags registers the input file flags on a subcommand
func addInputFlags(c *cobra.Command, results bool) {
	c.Flags().StringVarP(&modelFile, "model", "m", "", "Path to the model (.fem/.bdf) file")
	if results {
		c.Flags().StringVar(&mpcFile, "mpc", "", "Path to the MPC force report")
		c.Flags().StringVar(&spcFile, "spc", "", "Path to the SPC force report")
	}
}

// loadConfig reads --config if given and lets explicitly set flags override it
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Defaults()
	if configFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(configFile); err != nil {
			return cfg, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("block-size") {
		cfg.BlockSize = blockSize
	}
	if flags.Changed("model") {
		cfg.Model = modelFile
	}
	if flags.Lookup("mpc") != nil && flags.Changed("mpc") {
		cfg.MPCForces = mpcFile
	}
	if flags.Lookup("spc") != nil && flags.Changed("spc") {
		cfg.SPCForces = spcFile
	}
	if flags.Lookup("output") != nil && flags.Changed("output") {
		cfg.OutputDir = outputDir
	}
	if flags.Lookup("metrics-file") != nil && flags.Changed("metrics-file") {
		cfg.MetricsFile = metricsFile
	}
	return cfg, cfg.Validate()
}

// setup loads the config and builds the logger of a subcommand
func setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logging.New(cfg.LogLevel, devLogs)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

// fail prints err and exits with status 1
func fail(context string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", context, err)
	os.Exit(1)
}
