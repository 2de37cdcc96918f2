package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"jscore/pkg/driver"
)

var (
	keyColor   = color.New(color.FgCyan)
	flagColor  = color.New(color.FgYellow)
	titleColor = color.New(color.Bold)
	dimColor   = color.New(color.Faint)
)

var globalsCmd = &cobra.Command{
	Use:   "globals",
	Short: "List the global bindings",
	Args:  cobra.NoArgs,
	RunE:  runGlobals,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] path",
	Short: "Show the own properties and prototype chain of a value",
	Long:  `Inspect resolves a dotted path such as RangeError.prototype from the global object and prints its own properties with their descriptor flags`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	globalsCmd.Flags().Bool("json", false, "emit JSON")

	inspectCmd.Flags().Bool("json", false, "emit JSON")
	inspectCmd.Flags().Bool("hidden", false, "include non-enumerable properties")
	inspectCmd.Flags().Int("depth", -1, "prototype links to print (default from config)")
}

func runGlobals(cmd *cobra.Command, args []string) error {
	e, err := loadEngine(cmd, nil)
	if err != nil {
		return err
	}
	globals := e.Globals()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(os.Stdout, globals)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, g := range globals {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", keyColor.Sprint(g.Key), flagColor.Sprint(g.Flags()), g.Value)
	}
	return tw.Flush()
}

func runInspect(cmd *cobra.Command, args []string) error {
	e, err := loadEngine(cmd, nil)
	if err != nil {
		return err
	}
	opts := e.InspectOptions()
	if hidden, _ := cmd.Flags().GetBool("hidden"); hidden {
		opts.ShowHidden = true
	}
	if depth, _ := cmd.Flags().GetInt("depth"); depth >= 0 {
		opts.MaxDepth = depth
	}

	report, err := e.Inspect(args[0], opts)
	if err != nil {
		return reportThrown(e, err)
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(os.Stdout, report)
	}
	return printReport(os.Stdout, report)
}

func printReport(w io.Writer, r *driver.ObjectReport) error {
	if r.Kind == "" {
		fmt.Fprintf(w, "%s: %s %s\n", titleColor.Sprint(r.Path), r.Type, r.Value)
		return nil
	}
	caps := ""
	if r.Callable {
		caps += " callable"
	}
	if r.Constructable {
		caps += " constructable"
	}
	if !r.Extensible {
		caps += " non-extensible"
	}
	fmt.Fprintf(w, "%s: %s%s\n", titleColor.Sprint(r.Path), r.Kind, dimColor.Sprint(caps))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, p := range r.Properties {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", keyColor.Sprint(p.Key), flagColor.Sprint(p.Flags()), p.Value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for i, link := range r.Chain {
		fmt.Fprintf(w, "%*s-> %s\n", 2*i+2, "", link)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
