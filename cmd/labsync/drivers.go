package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"labsync/internal/driver"
	"labsync/internal/loader"
)

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "List collection drivers and the topology kinds they map",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()

		fmt.Fprintln(w, "Drivers:")
		for _, name := range driver.Names() {
			marker := " "
			if canonical, _ := driver.Canonical(cfg.Collection.Driver); canonical == name {
				marker = "*"
			}
			fmt.Fprintf(w, " %s %s\n", marker, name)
		}

		fmt.Fprintf(w, "\nAccepted names:\n  %s\n", strings.Join(driver.Supported(), ", "))

		fmt.Fprintln(w, "\nTopology kinds:")
		for _, kind := range loader.Kinds() {
			fmt.Fprintf(w, "  %-12s %s\n", kind, loader.MapKind(kind))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(driversCmd)
}
