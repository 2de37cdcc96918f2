package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/untillpro/goutils/logger"

	"jscore/pkg/driver"
	engineerrors "jscore/pkg/errors"
	"jscore/pkg/vm"
)

var rootCmd = &cobra.Command{
	Use:           "jscore",
	Short:         "Inspect and exercise the jscore built-in library",
	Long:          `jscore builds a realm with the standard built-ins and lets you look at, call and construct them from the command line`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errThrown marks a command that already reported an uncaught value.
var errThrown = errors.New("uncaught exception")

func main() {
	rootCmd.AddCommand(globalsCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(statsCmd)

	rootCmd.PersistentFlags().String("config", "", "path to a jscore.toml file")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose logging")
	rootCmd.PersistentFlags().String("color", "", "colorize output (auto|on|off), overrides [inspect].color")
	rootCmd.PersistentFlags().Bool("process", false, "install the process host global")

	os.Exit(run())
}

func run() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	var exit *driver.ExitError
	var engineErr engineerrors.EngineError
	switch {
	case errors.As(err, &exit):
		return exit.Code
	case errors.Is(err, errThrown):
	case errors.As(err, &engineErr):
		engineerrors.DisplayErrors(os.Stderr, []engineerrors.EngineError{engineErr})
	default:
		logger.Error(err)
	}
	return 1
}

// loadEngine builds the engine from --config and the flags that override it.
func loadEngine(cmd *cobra.Command, argv []string) (*driver.Engine, error) {
	flags := cmd.Root().PersistentFlags()

	cfg := driver.DefaultConfig()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := driver.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if verbose, _ := flags.GetBool("verbose"); verbose {
		cfg.Log.Level = "verbose"
	}
	if c, _ := flags.GetString("color"); c != "" {
		cfg.Inspect.Color = c
	}
	if process, _ := flags.GetBool("process"); process {
		cfg.Host.Process = true
	}
	cfg.Host.Argv = append([]string{"jscore"}, argv...)

	switch cfg.Inspect.Color {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	}
	return driver.New(cfg, os.Stdout)
}

// reportThrown prints an uncaught value and converts err into errThrown, or
// returns err unchanged when it carries no language value.
func reportThrown(e *driver.Engine, err error) error {
	v, ok := vm.AsException(err)
	if !ok {
		return err
	}
	fmt.Fprintln(os.Stderr, color.New(color.FgRed, color.Bold).Sprint("Uncaught"), e.Describe(v))
	return errThrown
}
