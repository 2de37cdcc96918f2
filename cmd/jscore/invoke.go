package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jscore/pkg/driver"
	"jscore/pkg/vm"
)

var callCmd = &cobra.Command{
	Use:   "call path [json-args...]",
	Short: "Call a built-in function",
	Long:  `Call resolves path, parses each remaining argument as a JSON literal and calls the function with the object it was read from as this`,
	Example: `  jscore call Math.max 1 5 3
  jscore call JSON.stringify '{"a":[1,2]}'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInvoke(cmd, args, (*driver.Engine).Call)
	},
}

var newCmd = &cobra.Command{
	Use:     "new path [json-args...]",
	Short:   "Construct an object with a built-in constructor",
	Example: `  jscore new Date 0
  jscore new Map`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInvoke(cmd, args, (*driver.Engine).Construct)
	},
}

func runInvoke(cmd *cobra.Command, args []string, invoke func(*driver.Engine, string, []vm.Value) (vm.Value, error)) error {
	e, err := loadEngine(cmd, args)
	if err != nil {
		return err
	}
	values, err := e.ParseArgs(args[1:])
	if err != nil {
		return reportThrown(e, err)
	}
	result, err := invoke(e, args[0], values)
	if err != nil {
		return reportThrown(e, err)
	}
	fmt.Fprintln(os.Stdout, e.Describe(result))
	return nil
}
