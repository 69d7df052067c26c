package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/splittile/internal/config"
	"github.com/1broseidon/splittile/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "tree":
		os.Exit(runTree(os.Args[2:]))
	case "toggle":
		os.Exit(runToggle(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: splittile <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the splittile daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  tree                Show the current layout tree")
	fmt.Fprintln(w, "  toggle              Flip the split orientation for new windows")
	fmt.Fprintln(w, "  reload              Reload the daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'splittile <command> --help' for command-specific options.")
}

// newFlagSet returns a flag set that prints usage lines to stderr.
func newFlagSet(name string, usage ...string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		for _, line := range usage {
			fmt.Fprintln(os.Stderr, line)
		}
		if hasFlags(fs) {
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Options:")
			fs.PrintDefaults()
		}
	}
	return fs
}

func hasFlags(fs *flag.FlagSet) bool {
	found := false
	fs.VisitAll(func(*flag.Flag) { found = true })
	return found
}

// parseNoArgs parses args and reports the exit code to use if parsing
// should stop the command.
func parseNoArgs(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", fs.Name())
		fs.Usage()
		return 2, false
	}
	return 0, true
}

func runStatus(args []string) int {
	fs := newFlagSet("status",
		"Usage: splittile status [--json]",
		"",
		"Show daemon status via IPC.")
	asJSON := fs.Bool("json", false, "Print the raw status as JSON")
	if code, ok := parseNoArgs(fs, args); !ok {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(os.Stdout, status)
	}
	writeStatus(os.Stdout, status)
	return 0
}

func writeStatus(w io.Writer, status *ipc.StatusData) {
	focus := status.Focus
	if focus == "" {
		focus = "-"
	}
	fmt.Fprintf(w, "daemon_running:   %v\n", status.DaemonRunning)
	fmt.Fprintf(w, "orientation:      %s\n", status.Orientation)
	fmt.Fprintf(w, "focus:            %s\n", focus)
	fmt.Fprintf(w, "window_count:     %d\n", status.WindowCount)
	fmt.Fprintf(w, "canvas:           %s\n", status.Canvas)
	fmt.Fprintf(w, "events:           created=%d destroyed=%d focus=%d toggles=%d ignored=%d\n",
		status.Events.Created, status.Events.Destroyed, status.Events.Focus, status.Events.Toggles, status.Events.Ignored)
	fmt.Fprintf(w, "mailbox:          posted=%d replaced=%d\n", status.MailboxPosted, status.MailboxReplaced)
	for _, file := range status.ConfigFiles {
		fmt.Fprintf(w, "config_file:      %s\n", file)
	}
	fmt.Fprintf(w, "uptime_seconds:   %d\n", status.UptimeSeconds)
}

func runTree(args []string) int {
	fs := newFlagSet("tree",
		"Usage: splittile tree [--json|--text]",
		"",
		"Show the daemon's layout tree. Draws an outline on a terminal and",
		"prints JSON otherwise.")
	asJSON := fs.Bool("json", false, "Always print JSON")
	asText := fs.Bool("text", false, "Always print the outline")
	if code, ok := parseNoArgs(fs, args); !ok {
		return code
	}
	if *asJSON && *asText {
		fmt.Fprintln(os.Stderr, "--json and --text are mutually exclusive")
		return 2
	}

	tree, err := ipc.NewClient().GetTree()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	text := *asText || (!*asJSON && term.IsTerminal(int(os.Stdout.Fd())))
	if !text {
		return printJSON(os.Stdout, tree)
	}
	if err := writeTree(os.Stdout, tree); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func writeTree(w io.Writer, tree *ipc.TreeData) error {
	if _, err := fmt.Fprintf(w, "canvas %s, new windows split %s\n\n", tree.Canvas, tree.Orientation); err != nil {
		return err
	}
	if tree.Tree == nil {
		_, err := fmt.Fprintln(w, "(no layout)")
		return err
	}
	return tree.Tree.WriteText(w)
}

func runToggle(args []string) int {
	fs := newFlagSet("toggle",
		"Usage: splittile toggle",
		"",
		"Flip the orientation used to split the focused window for the next",
		"new window. Existing windows are not moved.")
	if code, ok := parseNoArgs(fs, args); !ok {
		return code
	}

	if err := ipc.NewClient().ToggleOrientation(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("orientation toggle sent")
	return 0
}

func runReload(args []string) int {
	fs := newFlagSet("reload",
		"Usage: splittile reload",
		"",
		"Ask the daemon to reload its configuration file.")
	if code, ok := parseNoArgs(fs, args); !ok {
		return code
	}

	data, err := ipc.NewClient().Reload()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(data.Files) == 0 {
		fmt.Println("config reloaded (defaults, no file)")
		return 0
	}
	for _, file := range data.Files {
		fmt.Printf("config reloaded: %s\n", file)
	}
	return 0
}

func printJSON(w io.Writer, v interface{}) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  splittile config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  splittile config print [--path PATH] [--effective|--defaults|--sources]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/splittile/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if len(res.Files) == 0 {
			fmt.Println("config: ok (no file, using defaults)")
			return 0
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/splittile/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		printEffective := fs.Bool("effective", false, "Print effective config (default)")
		printSources := fs.Bool("sources", false, "Print where each key was set")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if *printDefaults {
			data, err := yaml.Marshal(config.DefaultConfig())
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			fmt.Print(string(data))
			return 0
		}

		_ = printEffective // default
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if *printSources {
			writeSources(os.Stdout, res)
			return 0
		}
		for _, file := range res.Files {
			fmt.Printf("# file: %s\n", file)
		}
		data, err := yaml.Marshal(res.Config)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

// configKeys are the top-level keys shown by config print --sources.
var configKeys = []string{
	"toggle_orientation_hotkey",
	"alt_toggle_hotkey",
	"display",
	"screen_padding.top",
	"screen_padding.bottom",
	"screen_padding.left",
	"screen_padding.right",
	"ignore.classes",
	"ignore.titles",
	"require_title",
	"reconcile_interval",
	"log_level",
}

func writeSources(w io.Writer, res *config.LoadResult) {
	for _, key := range configKeys {
		fmt.Fprintf(w, "%-27s %s\n", key, res.SourceOf(key))
	}
}
