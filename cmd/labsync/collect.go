package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"labsync/internal/service"
)

var (
	collectRunningConfig bool
	collectShowReport    bool
)

var collectCmd = &cobra.Command{
	Use:   "collect [file]",
	Short: "Collect live facts from every device without touching the inventory",
	Long: `Connect to each device of the topology with the configured driver and
gather its facts and interfaces. The enriched site is printed; use --report
to print the per-device run report instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		site, err := loadSite(args)
		if err != nil {
			return err
		}

		creds, err := buildCredentials()
		if err != nil {
			return err
		}

		opts := []service.RunnerOption{}
		if prober := buildPreflight(ctx); prober != nil {
			opts = append(opts, service.WithPreflight(prober))
		}

		runner := service.NewRunner(nil, creds, runnerConfig(collectRunningConfig), log, opts...)
		report := runner.Run(ctx, site)

		if collectShowReport {
			err = export(cmd.OutOrStdout(), report, "json")
		} else {
			err = export(cmd.OutOrStdout(), site, "yaml")
		}
		if err != nil {
			return err
		}

		if strict && report.Failed() {
			return fmt.Errorf("%d of %d devices failed", report.Summary.Failed, report.Summary.Total)
		}
		return nil
	},
}

// runnerConfig derives the batch settings from the loaded config
func runnerConfig(runningConfig bool) service.RunnerConfig {
	return service.RunnerConfig{
		Driver:        cfg.Collection.Driver,
		DriverOptions: cfg.DriverOptions(),
		Workers:       cfg.Collection.Workers,
		CollectConfig: runningConfig || cfg.Collection.RunningConfig,
	}
}

func init() {
	collectCmd.Flags().BoolVar(&collectRunningConfig, "running-config", false, "also retrieve the running configuration")
	collectCmd.Flags().BoolVar(&collectShowReport, "report", false, "print the run report instead of the site")
	rootCmd.AddCommand(collectCmd)
}
