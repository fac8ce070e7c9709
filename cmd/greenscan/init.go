package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/greenscan/internal/config"
	"github.com/ludo-technologies/greenscan/internal/constants"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a greenscan configuration file",
		Long: `Generate a greenscan configuration file with sensible defaults.

By default, creates greenscan.yaml in the current directory. Use
--interactive for a guided setup wizard.

Examples:
  # Create greenscan.yaml in current directory
  greenscan init

  # Custom output path
  greenscan init --config custom.yaml

  # Overwrite existing file
  greenscan init --force

  # Interactive setup wizard
  greenscan init --interactive
  greenscan init -i`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", constants.DefaultConfigFileName,
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	interactive, _ := cmd.Flags().GetBool("interactive")

	cfg := config.DefaultConfig()

	// Run interactive setup if requested
	if interactive {
		var err error
		configPath, err = runInteractiveSetup(cfg, configPath)
		if err != nil {
			return err
		}
	}

	// Check if file exists
	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	// Check if parent directory exists
	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	if err := config.SaveConfig(cfg, configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Print success message with absolute path if possible, otherwise use relative path
	displayPath := configPath
	if absPath, err := filepath.Abs(configPath); err == nil {
		displayPath = absPath
	}
	fmt.Printf("Created %s\n", displayPath)
	fmt.Println("\nRun 'greenscan analyze .' to analyze your project.")

	return nil
}

func runInteractiveSetup(cfg *config.Config, defaultConfigPath string) (string, error) {
	fmt.Println()
	fmt.Println("greenscan Configuration Setup")
	fmt.Println("=============================")
	fmt.Println()

	// Strictness selection
	strictnessLevels := []struct {
		Label       string
		Description string
		Apply       func(*config.Config)
	}{
		{"Standard (recommended)", "Balanced penalties for most projects", func(*config.Config) {}},
		{"Relaxed", "Lower penalties, fewer score deductions", func(c *config.Config) {
			c.Scoring.GeneralPenalties = config.SeverityPenalties{Low: 10, Medium: 20, High: 30, Critical: 40}
		}},
		{"Strict", "Higher penalties, CI/CD enforcement", func(c *config.Config) {
			c.Scoring.GeneralPenalties = config.SeverityPenalties{Low: 20, Medium: 35, High: 50, Critical: 60}
		}},
	}

	strictnessTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
		Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	strictnessPrompt := promptui.Select{
		Label:     "How strict should the scoring be?",
		Items:     strictnessLevels,
		Templates: strictnessTemplates,
	}

	strictnessIdx, _, err := strictnessPrompt.Run()
	if err != nil {
		return "", fmt.Errorf("strictness selection cancelled: %w", err)
	}
	strictnessLevels[strictnessIdx].Apply(cfg)

	fmt.Println()

	// Carbon estimation toggle
	carbonPrompt := promptui.Select{
		Label: "Enable carbon footprint estimation?",
		Items: []string{"No", "Yes"},
	}

	carbonIdx, _, err := carbonPrompt.Run()
	if err != nil {
		return "", fmt.Errorf("carbon selection cancelled: %w", err)
	}
	cfg.Carbon.Enabled = carbonIdx == 1

	fmt.Println()

	// Output path prompt
	outputPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: defaultConfigPath,
	}

	outputPath, err := outputPrompt.Run()
	if err != nil {
		return "", fmt.Errorf("output path input cancelled: %w", err)
	}

	// Use default if empty
	if outputPath == "" {
		outputPath = defaultConfigPath
	}

	fmt.Println()
	fmt.Printf("Creating %s... ", outputPath)

	return outputPath, nil
}
