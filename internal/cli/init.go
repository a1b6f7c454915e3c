package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/tacogips/remotebuild/internal/config"
	"gopkg.in/yaml.v3"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .remotebuild.yaml interactively",
	Long: `Create a .remotebuild.yaml in the project directory by prompting
for the remote host, build command, and artifact patterns.

Examples:
  remotebuild init
  remotebuild init --path ./my-project
  remotebuild init --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

// Init command flags
var (
	initPath  string
	initForce bool
)

func init() {
	initCmd.Flags().StringVarP(&initPath, FlagPath, "p", "", DescPath)
	initCmd.Flags().BoolVarP(&initForce, FlagForce, "f", false, DescForce)
}

func runInit(cmd *cobra.Command, args []string) error {
	projectDir, err := resolveProjectDir(initPath)
	if err != nil {
		return err
	}

	cfgPath := filepath.Join(projectDir, config.DefaultConfigName)
	if _, err := os.Stat(cfgPath); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	}

	cfg, err := promptForConfig()
	if err != nil {
		return fmt.Errorf("failed to read configuration answers: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	if err := os.WriteFile(cfgPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfgPath, err)
	}

	printSuccess(fmt.Sprintf("Created: %s", cfgPath))
	printInfo("")
	printInfo("Next steps:")
	printInfo(fmt.Sprintf("  1. Review %s", config.DefaultConfigName))
	printInfo("  2. Run: remotebuild")
	return nil
}

// promptForConfig interactively collects the configuration values.
func promptForConfig() (*config.Config, error) {
	var host string
	if err := survey.AskOne(&survey.Input{
		Message: "SSH host (e.g. user@buildhost):",
	}, &host, survey.WithValidator(survey.Required)); err != nil {
		return nil, err
	}

	remotePath := config.DefaultRemotePath
	if err := survey.AskOne(&survey.Input{
		Message: "Remote build directory:",
		Default: config.DefaultRemotePath,
	}, &remotePath); err != nil {
		return nil, err
	}

	var buildCommand string
	if err := survey.AskOne(&survey.Input{
		Message: "Build command:",
		Help:    "Run on the remote host from the remote build directory, e.g. make -j4",
	}, &buildCommand, survey.WithValidator(survey.Required)); err != nil {
		return nil, err
	}

	var artifactList string
	if err := survey.AskOne(&survey.Input{
		Message: "Artifact patterns (comma-separated, empty for none):",
		Help:    "Paths relative to the remote build directory, e.g. out/app.bin,dist/*.tar.gz",
	}, &artifactList); err != nil {
		return nil, err
	}

	gitAware := true
	if err := survey.AskOne(&survey.Confirm{
		Message: "Use git to detect files for faster sync?",
		Default: true,
	}, &gitAware); err != nil {
		return nil, err
	}

	return &config.Config{
		Host:         host,
		RemotePath:   remotePath,
		BuildCommand: buildCommand,
		Artifacts:    splitPatterns(artifactList),
		GitAware:     &gitAware,
		Output:       "minimal",
	}, nil
}

// splitPatterns splits a comma-separated pattern list, dropping empties.
func splitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
