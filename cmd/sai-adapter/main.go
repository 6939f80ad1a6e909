// sai-adapter runs the switch adapter core against the simulated NPU
// backend. It applies a configured scenario of mirror and samplepacket
// sessions and port settings, then reports or inspects the result.
//
// Usage:
//
//	sai-adapter run --config switch.yaml
//	sai-adapter shell --config switch.yaml
//	sai-adapter debug mirror session all --config switch.yaml
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Nativu5/sai-adapter/pkg/adapter"
	"github.com/Nativu5/sai-adapter/pkg/config"
	"github.com/Nativu5/sai-adapter/pkg/dump"
	"github.com/Nativu5/sai-adapter/pkg/netdev"
	"github.com/Nativu5/sai-adapter/pkg/shell"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

// Exit codes following CLI conventions.
const (
	exitOK           = 0
	exitRuntimeError = 1
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitRuntimeError)
	}
}

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	logLevel   string
	configPath string
	netdev     bool
}

// rootCmd builds the top-level cobra command tree.
func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "sai-adapter",
		Short: "SAI vendor adapter for mirror, samplepacket and port objects",
		Long:  "A switch adapter core that manages mirror sessions, packet sampling sessions and port attributes on top of an NPU backend.",
		// Silence default usage on runtime errors; we handle exit codes ourselves.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(opts.logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", opts.logLevel, err)
			}
			log.SetLevel(lvl)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Switch scenario file (yaml|json|toml); defaults apply when omitted")
	root.PersistentFlags().BoolVar(&opts.netdev, "netdev", true, "Seed port state from kernel links named in the config")

	root.AddCommand(
		newRunCmd(opts),
		newShellCmd(opts),
		newDebugCmd(opts),
		newVersionCmd(),
	)

	return root
}

// ──────────────────────────────────────────────
//  run
// ──────────────────────────────────────────────

func newRunCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Bring up the switch, apply the scenario and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sw, applied, err := bringUp(cmd, opts)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), sw, applied)
			return nil
		},
	}
}

// ──────────────────────────────────────────────
//  shell
// ──────────────────────────────────────────────

func newShellCmd(opts *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Apply the scenario and open an interactive debug shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := dump.ParseFormat(output)
			if err != nil {
				return err
			}
			sw, _, err := bringUp(cmd, opts)
			if err != nil {
				return err
			}
			return shell.New(sw, cmd.OutOrStdout(), format).Run(cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&output, "output", "table", "Output format (table|json|yaml)")

	return cmd
}

// ──────────────────────────────────────────────
//  debug
// ──────────────────────────────────────────────

func newDebugCmd(opts *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "debug <module> <subcommand> [<id>|all]",
		Short: "Apply the scenario and run a single debug shell command",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := dump.ParseFormat(output)
			if err != nil {
				return err
			}
			sw, _, err := bringUp(cmd, opts)
			if err != nil {
				return err
			}
			line := "debug " + strings.Join(args, " ")
			return shell.New(sw, cmd.OutOrStdout(), format).Execute(line)
		},
	}

	cmd.Flags().StringVar(&output, "output", "table", "Output format (table|json|yaml)")

	return cmd
}

// ──────────────────────────────────────────────
//  version
// ──────────────────────────────────────────────

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sai-adapter %s (commit: %s, built: %s)\n", version, commit, buildDate)
		},
	}
}

// ──────────────────────────────────────────────
//  helpers
// ──────────────────────────────────────────────

// bringUp loads the config, builds a simulated switch and applies the
// scenario to it.
func bringUp(cmd *cobra.Command, opts *globalOptions) (*adapter.Switch, *adapter.Applied, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	// The config file level only applies when --log-level was left alone.
	if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
		lvl, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q in config: %w", cfg.LogLevel, err)
		}
		log.SetLevel(lvl)
	}

	var resolver netdev.Resolver
	if opts.netdev {
		resolver = netdev.NewResolver()
	}
	backend, err := adapter.NewSimBackend(cfg, resolver)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build backend: %w", err)
	}

	sw := adapter.New(backend)
	if err := sw.Init(); err != nil {
		return nil, nil, err
	}
	applied, err := sw.Apply(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to apply scenario: %w", err)
	}
	return sw, applied, nil
}

// printSummary writes one line per created session and the port count.
func printSummary(w io.Writer, sw *adapter.Switch, applied *adapter.Applied) {
	fmt.Fprintf(w, "Backend: %s, objects: %d, ports: %d\n",
		sw.Backend(), sw.Inventory.Len(), len(sw.Inventory.List(types.ObjectTypePort)))
	printSessions(w, "mirror session", applied.Mirrors)
	printSessions(w, "samplepacket session", applied.Samplepackets)
}

func printSessions(w io.Writer, kind string, sessions map[string]types.ObjectID) {
	names := make([]string, 0, len(sessions))
	for name := range sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s %s: %s\n", kind, name, sessions[name])
	}
}
