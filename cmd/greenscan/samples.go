package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ludo-technologies/greenscan/domain"
	"github.com/ludo-technologies/greenscan/internal/config"
	"github.com/ludo-technologies/greenscan/internal/samples"
	"github.com/ludo-technologies/greenscan/service"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	samplesFormat string
	samplesCarbon bool
)

func samplesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "samples",
		Short: "Explore built-in Python samples",
		Long: `Explore the built-in Python samples that demonstrate the analyzer.

Each sample is a small self-contained script exhibiting a different
sustainability profile, from clean pipelines to insecure scripts.

Examples:
  greenscan samples list
  greenscan samples show inefficient
  greenscan samples analyze efficient
  greenscan samples analyze`,
	}

	cmd.AddCommand(samplesListCmd())
	cmd.AddCommand(samplesShowCmd())
	cmd.AddCommand(samplesAnalyzeCmd())

	return cmd
}

func samplesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available samples",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range samples.Names() {
				sample, _ := samples.Get(name)
				fmt.Printf("  %-24s %s\n", sample.Name, sample.Description)
			}
		},
	}
}

func samplesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a sample's source code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, ok := samples.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown sample: %s (try 'greenscan samples list')", args[0])
			}
			fmt.Print(sample.Source)
			return nil
		},
	}
}

func samplesAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [name]",
		Short: "Analyze a built-in sample",
		Long: `Analyze a built-in sample and print its Green Score breakdown.

When no name is given, an interactive picker is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSamplesAnalyze,
	}

	cmd.Flags().StringVarP(&samplesFormat, "format", "f", "text",
		"Output format: text, json, yaml, csv, html")
	cmd.Flags().BoolVar(&samplesCarbon, "carbon", false,
		"Include carbon footprint estimation")

	return cmd
}

func runSamplesAnalyze(cmd *cobra.Command, args []string) error {
	var sample samples.Sample
	if len(args) == 1 {
		s, ok := samples.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown sample: %s (try 'greenscan samples list')", args[0])
		}
		sample = s
	} else {
		s, err := pickSample()
		if err != nil {
			return err
		}
		sample = s
	}

	cfg := config.DefaultConfig()
	if samplesCarbon {
		cfg.Carbon.Enabled = true
	}

	svc := service.NewAnalysisService(cfg)
	result, err := svc.AnalyzeSource(context.Background(), sample.Name+".py", sample.Source)
	if err != nil {
		return err
	}

	response := &domain.AnalyzeResponse{
		Files: []domain.AnalysisResult{*result},
		Summary: domain.AnalyzeSummary{
			FilesAnalyzed:     1,
			TotalIssues:       len(result.Issues),
			AverageGreenScore: result.Scores.GreenScore,
			BestGreenScore:    result.Scores.GreenScore,
			WorstGreenScore:   result.Scores.GreenScore,
		},
	}

	formatter := service.NewReportFormatter()
	return formatter.Write(response, domain.OutputFormat(samplesFormat), os.Stdout)
}

func pickSample() (samples.Sample, error) {
	items := samples.All()

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Name | cyan }} - {{ .Description | faint }}",
		Inactive: "   {{ .Name | white }} - {{ .Description | faint }}",
		Selected: "\U00002705 {{ .Name | green }}",
	}

	prompt := promptui.Select{
		Label:     "Which sample would you like to analyze?",
		Items:     items,
		Templates: templates,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return samples.Sample{}, fmt.Errorf("sample selection cancelled: %w", err)
	}
	return items[idx], nil
}
