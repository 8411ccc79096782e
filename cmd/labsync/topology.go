package main

import (
	"github.com/spf13/cobra"
)

var topologyCmd = &cobra.Command{
	Use:   "topology [file]",
	Short: "Show the site and devices a topology file describes",
	Long: `Parse a containerlab topology and print the resulting site with its
devices, kinds, drivers and management addresses. Nothing is contacted.
Use -o ansible-inventory to emit an Ansible inventory of the lab.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		site, err := loadSite(args)
		if err != nil {
			return err
		}
		return export(cmd.OutOrStdout(), site, "yaml")
	},
}

func init() {
	rootCmd.AddCommand(topologyCmd)
}
