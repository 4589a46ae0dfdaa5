// Package cmd implements the framedump commands.
//
// The root command dispatches to subcommands (render, tree, serve, config),
// each of which parses its own flags.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-drift/framecore/pkg/config"
	"github.com/go-drift/framecore/pkg/logging"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name  string
	Short string
	Long  string
	Usage string
	Run   func(env *Env, args []string) error
}

// Env is what every command runs against: the resolved configuration and
// the output streams.
type Env struct {
	Config     *config.Config
	ModulePath string
	Stdout     io.Writer
	Stderr     io.Writer
}

var rootCmd = &Command{
	Name:  "framedump",
	Short: "framedump - headless frame pipeline driver",
	Long: `framedump runs the build, layout, paint and composite phases of a
widget tree without a display. It renders demo scenes to PNG, prints the
element and layer trees, and serves the engine's debug endpoints.

Use "framedump <command> --help" for more information about a command.`,
	Usage: "framedump [--config FILE] <command> [flags]",
}

// Commands registered with the CLI, in registration order.
var (
	commands = make(map[string]*Command)
	ordered  []*Command
)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	ordered = append(ordered, cmd)
}

// Execute runs the CLI with the given arguments.
func Execute(args []string) error {
	return execute(args, os.Stdout, os.Stderr)
}

func execute(args []string, stdout, stderr io.Writer) error {
	var (
		configPath   string
		filteredArgs []string
	)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-h", "--help", "help":
			if len(filteredArgs) == 0 {
				printHelp(stdout)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "-v", "--version", "version":
			if len(filteredArgs) == 0 {
				fmt.Fprintf(stdout, "framedump version %s (built %s)\n", Version, BuildTime)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "--config":
			if len(filteredArgs) > 0 {
				filteredArgs = append(filteredArgs, arg)
				continue
			}
			if i+1 >= len(args) {
				return fmt.Errorf("--config requires a file path")
			}
			configPath = args[i+1]
			i++
		default:
			if v, ok := strings.CutPrefix(arg, "--config="); ok && len(filteredArgs) == 0 {
				configPath = v
				continue
			}
			filteredArgs = append(filteredArgs, arg)
		}
	}
	args = filteredArgs

	if len(args) == 0 {
		printHelp(stdout)
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", args[0])
		printHelp(stderr)
		return fmt.Errorf("unknown command: %s", args[0])
	}

	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(stdout, cmd)
			return nil
		}
	}

	env, err := loadEnv(configPath, stdout, stderr)
	if err != nil {
		return err
	}
	return cmd.Run(env, cmdArgs)
}

// loadEnv resolves the configuration: an explicit file wins, otherwise
// framecore.yaml is looked up at the project root above the working
// directory. Outside any project the defaults apply.
func loadEnv(configPath string, stdout, stderr io.Writer) (*Env, error) {
	env := &Env{Stdout: stdout, Stderr: stderr}
	switch {
	case configPath != "":
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		env.Config = cfg
	default:
		root, err := config.FindProjectRoot(".")
		if err != nil {
			env.Config = config.Default()
			break
		}
		resolved, err := config.Resolve(root)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		env.Config = resolved.Config
		env.ModulePath = resolved.ModulePath
	}
	logging.SetLogger(env.Config.NewLogger(stderr))
	return env, nil
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, rootCmd.Long)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s\n", rootCmd.Usage)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, sub := range ordered {
		fmt.Fprintf(w, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -h, --help           Show help for a command")
	fmt.Fprintln(w, "  -v, --version        Show version information")
	fmt.Fprintf(w, "  --config FILE        Configuration file (default: %s at the project root)\n", config.FileName)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  framedump render --scene flex --out flex.png")
	fmt.Fprintln(w, "  framedump tree --scene layers --layers")
	fmt.Fprintln(w, "  framedump serve --port 9222")
}

func printCommandHelp(w io.Writer, cmd *Command) {
	fmt.Fprintln(w, cmd.Long)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s\n", cmd.Usage)
}
