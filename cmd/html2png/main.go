package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/joho/godotenv"
	"go.uber.org/automaxprocs/maxprocs"

	html2png "github.com/alnah/go-html2png"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// A missing .env is the common case; real environment variables win.
	_ = godotenv.Load()

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	if verboseRequested(os.Args) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))
	}

	ctx, stop := interruptContext(context.Background())
	code := runMain(ctx, os.Args, DefaultEnv())
	stop()
	os.Exit(code)
}

// runMain dispatches to a command and returns the process exit code.
// A first argument that is not a command is treated as render input, so
// "html2png cards/_html" works like "html2png render cards/_html".
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	if !isCommand(cmd) {
		if !looksLikeInput(cmd) {
			fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
			printUsage(env.Stderr)
			return ExitUsage
		}
		cmd, rest = "render", args[1:]
	}

	switch cmd {
	case "render":
		err := runRender(ctx, rest, env)
		if err != nil {
			fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		}
		return exitCodeFor(err)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "completion":
		if err := runCompletion(rest, env); err != nil {
			fmt.Fprintf(env.Stderr, "error: %v\n", err)
			return exitCodeFor(err)
		}
		return ExitSuccess
	case "version":
		fmt.Fprintf(env.Stdout, "go-html2png %s\n", Version)
		return ExitSuccess
	default: // help
		runHelp(rest, env)
		return ExitSuccess
	}
}

var commands = []string{"render", "doctor", "completion", "version", "help"}

// isCommand reports whether name is a known command or a help alias.
func isCommand(name string) bool {
	return slices.Contains(commands, name) || name == "-h" || name == "--help"
}

// looksLikeInput reports whether arg can start an implicit render:
// a flag, an HTML file, or an existing directory.
func looksLikeInput(arg string) bool {
	if len(arg) > 1 && arg[0] == '-' {
		return true
	}
	if html2png.IsRenderable(arg) {
		return true
	}
	info, err := os.Stat(arg)
	return err == nil && info.IsDir()
}

// verboseRequested scans raw arguments before flag parsing.
func verboseRequested(args []string) bool {
	return slices.Contains(args, "-v") || slices.Contains(args, "--verbose")
}
