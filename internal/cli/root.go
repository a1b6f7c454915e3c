package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/tacogips/remotebuild/internal/app"
	"github.com/tacogips/remotebuild/internal/build"
	"github.com/tacogips/remotebuild/internal/config"
	"github.com/tacogips/remotebuild/internal/debug"
	"github.com/tacogips/remotebuild/internal/status"
)

// Version information (overridden from cmd/remotebuild via ldflags)
var (
	Version   = build.Version()
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global flags
var (
	globalNoColor bool
	globalDebug   bool
)

// Root command flags
var (
	rootPath          string
	rootConfigName    string
	rootForceFullSync bool
	rootOutput        string
)

// rootCmd represents the base command; running it proxies a build to the
// configured remote host.
var rootCmd = &cobra.Command{
	Use:   "remotebuild",
	Short: "Proxy builds to a remote server via SSH",
	Long: `remotebuild syncs the current project to a remote host over SSH,
runs the configured build command there, and copies the resulting
artifacts back into the working directory.

Configuration lives in .remotebuild.yaml in the project root
(see "remotebuild init"). All remote operations of one run share a
single multiplexed SSH session, so authentication happens once per
host no matter how many files move.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug.SetDebug(globalDebug)
		debug.SetNoColor(globalNoColor)
	},
	RunE: runBuild,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVar(&globalNoColor, FlagNoColor, false, DescNoColor)
	rootCmd.PersistentFlags().BoolVar(&globalDebug, FlagDebug, false, DescDebug)

	// Build run flags
	rootCmd.Flags().StringVarP(&rootPath, FlagPath, "p", "", DescPath)
	rootCmd.Flags().StringVarP(&rootConfigName, FlagConfig, "c", config.DefaultConfigName, DescConfig)
	rootCmd.Flags().BoolVar(&rootForceFullSync, FlagForceFullSync, false, DescForceFullSync)
	rootCmd.Flags().StringVarP(&rootOutput, FlagOutput, "o", "", DescOutput)

	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	projectDir, err := resolveProjectDir(rootPath)
	if err != nil {
		return err
	}

	cfg, err := config.NewLoader().Load(filepath.Join(projectDir, rootConfigName))
	if err != nil {
		return err
	}

	tier := effectiveTier(rootOutput, cfg.Output)

	interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	reporter := status.NewReporter(tier, colorable.NewColorableStdout(), status.Options{
		Interactive: interactive,
		NoColor:     globalNoColor,
	})

	if tier != status.TierMinimal {
		printInfo(fmt.Sprintf("remotebuild %s", Version))
		printInfo(fmt.Sprintf("  host:    %s", cfg.Host))
		printInfo(fmt.Sprintf("  project: %s", projectDir))
	}

	pipeline, err := app.NewPipeline(tier == status.TierVerbose)
	if err != nil {
		return err
	}

	if err := pipeline.Run(app.BuildOptions{
		ProjectDir:    projectDir,
		Config:        cfg,
		ForceFullSync: rootForceFullSync,
		Reporter:      reporter,
	}); err != nil {
		reporter.Fail(fmt.Sprintf("build failed: %v", err))
		return err
	}
	return nil
}

// effectiveTier picks the output tier for a run. The --output flag wins
// over the configured tier; unrecognized names degrade to minimal in
// ParseTier.
func effectiveTier(override, configured string) status.Tier {
	if override != "" {
		return status.ParseTier(override)
	}
	return status.ParseTier(configured)
}

// resolveProjectDir resolves the project directory from the --path flag,
// defaulting to the current directory. The result must be an existing
// directory; anything else aborts before any config or network work.
func resolveProjectDir(path string) (string, error) {
	var dir string
	var err error
	if path == "" {
		dir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to determine current directory: %w", err)
		}
	} else {
		dir, err = filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to resolve project path %s: %w", path, err)
		}
	}

	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("project path does not exist: %s", dir)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project path is not a directory: %s", dir)
	}
	return dir, nil
}
