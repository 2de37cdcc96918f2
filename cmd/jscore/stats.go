package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count the objects reachable from the global object by data kind",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().Bool("json", false, "emit JSON")
	statsCmd.Flags().Bool("collect", false, "collect garbage before counting")
}

func runStats(cmd *cobra.Command, args []string) error {
	e, err := loadEngine(cmd, nil)
	if err != nil {
		return err
	}
	if collect, _ := cmd.Flags().GetBool("collect"); collect {
		freed := e.Collect()
		fmt.Fprintf(os.Stdout, "%s %d\n", dimColor.Sprint("freed"), freed)
	}

	stats := e.Stats()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(os.Stdout, stats)
	}
	for _, kind := range stats.Kinds() {
		fmt.Fprintf(os.Stdout, "%s %6d\n", keyColor.Sprintf("%-14s", kind), stats.ByKind[kind])
	}
	fmt.Fprintf(os.Stdout, "%s %6d\n", titleColor.Sprintf("%-14s", "reachable"), stats.Reachable)
	fmt.Fprintf(os.Stdout, "%s %6d\n", titleColor.Sprintf("%-14s", "live"), stats.Live)
	return nil
}
