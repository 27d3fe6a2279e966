// Package cmd implements the upf CLI commands.
//
// A root command dispatches to subcommands (check, tree, run, version)
// registered from init functions.
package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name        string
	Short       string
	Long        string
	Usage       string
	Run         func(args []string) error
	SubCommands []*Command
}

var rootCmd = &Command{
	Name:  "upf",
	Short: "UPF - retained-mode UI core",
	Long: `upf works with UPF projects: a directory holding upf.yaml, stylesheets
and YAML layouts.

Use "upf <command> --help" for more information about a command.`,
	Usage: "upf <command> [dir] [flags]",
}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// stdout receives command output. Tests replace it.
var stdout io.Writer = os.Stdout

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Show version information",
		Long:  "Print the upf version and build time.",
		Usage: "upf version",
		Run: func([]string) error {
			printVersion()
			return nil
		},
	})
}

// Execute runs the CLI with the given arguments.
func Execute(args []string) error {
	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}
	switch name := args[0]; {
	case isHelp(name):
		printHelp(rootCmd)
		return nil
	case name == "-v" || name == "--version":
		printVersion()
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		printHelp(rootCmd)
		return fmt.Errorf("unknown command: %s", args[0])
	}
	if slices.ContainsFunc(args[1:], isHelp) {
		printCommandHelp(cmd)
		return nil
	}
	return cmd.Run(args[1:])
}

func isHelp(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}

func printVersion() {
	fmt.Fprintf(stdout, "upf version %s (built %s)\n", Version, BuildTime)
}

var examples = [][2]string{
	{"upf check ./demo", "Validate config and stylesheets"},
	{"upf tree ./demo", "Print the laid out element tree"},
	{"upf run ./demo --debug", "Open a window with element outlines"},
}

func printHelp(cmd *Command) {
	printCommandHelp(cmd)
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\nCommands:")
	for _, sub := range cmd.SubCommands {
		fmt.Fprintf(w, "  %s\t%s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(w, "\nFlags:")
	fmt.Fprintln(w, "  -h, --help\tShow help for a command")
	fmt.Fprintln(w, "  -v, --version\tShow version information")
	fmt.Fprintln(w, "\nExamples:")
	for _, ex := range examples {
		fmt.Fprintf(w, "  %s\t%s\n", ex[0], ex[1])
	}
	w.Flush()
}

func printCommandHelp(cmd *Command) {
	fmt.Fprintf(stdout, "%s\n\nUsage:\n  %s\n", cmd.Long, cmd.Usage)
}
