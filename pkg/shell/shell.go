// Package shell implements the line-oriented debug grammar
//
//	debug <module> <subcommand> [<id>|all]
//
// over a running Switch. It only reads registry state.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Nativu5/sai-adapter/pkg/adapter"
	"github.com/Nativu5/sai-adapter/pkg/dump"
	"github.com/Nativu5/sai-adapter/pkg/mirror"
	"github.com/Nativu5/sai-adapter/pkg/port"
	"github.com/Nativu5/sai-adapter/pkg/samplepacket"
	"github.com/Nativu5/sai-adapter/pkg/types"
)

// Prompt is printed before each interactive line.
const Prompt = "sai> "

// ErrUsage is wrapped by every grammar error.
var ErrUsage = errors.New("usage")

const usage = `commands:
  debug mirror session [<id>|all]
  debug mirror ports <id>
  debug samplepacket session [<id>|all]
  debug samplepacket ports <id>
  debug port info [<id>|all]
  debug port stats <id>
  help
  exit`

// Shell executes debug commands against a Switch.
type Shell struct {
	sw     *adapter.Switch
	out    io.Writer
	format dump.Format
}

// New returns a shell writing to out in the given format.
func New(sw *adapter.Switch, out io.Writer, format dump.Format) *Shell {
	return &Shell{sw: sw, out: out, format: format}
}

// Run reads commands from in until EOF or "exit". Command errors are
// printed and do not stop the loop.
func (s *Shell) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(s.out, Prompt)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "exit", "quit":
			return nil
		case "":
		default:
			if err := s.Execute(line); err != nil {
				fmt.Fprintf(s.out, "error: %v\n", err)
			}
		}
		fmt.Fprint(s.out, Prompt)
	}
	return scanner.Err()
}

// Execute runs one command line.
func (s *Shell) Execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	if fields[0] == "help" {
		fmt.Fprintln(s.out, usage)
		return nil
	}
	if fields[0] != "debug" || len(fields) < 3 || len(fields) > 4 {
		return fmt.Errorf("%w: debug <module> <subcommand> [<id>|all]", ErrUsage)
	}
	module, sub := fields[1], fields[2]
	arg := "all"
	if len(fields) == 4 {
		arg = fields[3]
	}

	switch module + " " + sub {
	case "mirror session":
		return s.mirrorSession(arg)
	case "mirror ports":
		return s.mirrorPorts(arg)
	case "samplepacket session":
		return s.samplepacketSession(arg)
	case "samplepacket ports":
		return s.samplepacketPorts(arg)
	case "port info":
		return s.portInfo(arg)
	case "port stats":
		return s.portStats(arg)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, module+" "+sub)
	}
}

// parseID accepts a numeric object id (decimal or 0x-prefixed hex) or an
// inventory object name.
func (s *Shell) parseID(arg string) (types.ObjectID, error) {
	if arg == "all" {
		return types.NullObjectID, fmt.Errorf("%w: an object id is required", ErrUsage)
	}
	if v, err := strconv.ParseUint(arg, 0, 64); err == nil {
		return types.ObjectID(v), nil
	}
	if obj, ok := s.sw.Inventory.Lookup(arg); ok {
		return obj.ID, nil
	}
	return types.NullObjectID, fmt.Errorf("%w: bad object id %q", ErrUsage, arg)
}

func (s *Shell) mirrorSession(arg string) error {
	if arg == "all" {
		return dump.MirrorSessions(s.out, s.sw.Mirror.Sessions(), s.format)
	}
	id, err := s.parseID(arg)
	if err != nil {
		return err
	}
	v, err := s.sw.Mirror.Session(id)
	if err != nil {
		return fmt.Errorf("mirror session %s: %w", id, err)
	}
	return dump.MirrorSessions(s.out, []mirror.SessionView{v}, s.format)
}

func (s *Shell) mirrorPorts(arg string) error {
	id, err := s.parseID(arg)
	if err != nil {
		return err
	}
	v, err := s.sw.Mirror.Session(id)
	if err != nil {
		return fmt.Errorf("mirror session %s: %w", id, err)
	}
	return dump.MirrorPorts(s.out, v, s.format)
}

func (s *Shell) samplepacketSession(arg string) error {
	if arg == "all" {
		return dump.SamplepacketSessions(s.out, s.sw.Samplepacket.Sessions(), s.format)
	}
	id, err := s.parseID(arg)
	if err != nil {
		return err
	}
	v, err := s.sw.Samplepacket.Session(id)
	if err != nil {
		return fmt.Errorf("samplepacket session %s: %w", id, err)
	}
	return dump.SamplepacketSessions(s.out, []samplepacket.SessionView{v}, s.format)
}

func (s *Shell) samplepacketPorts(arg string) error {
	id, err := s.parseID(arg)
	if err != nil {
		return err
	}
	v, err := s.sw.Samplepacket.Session(id)
	if err != nil {
		return fmt.Errorf("samplepacket session %s: %w", id, err)
	}
	return dump.SamplepacketPorts(s.out, v, s.format)
}

func (s *Shell) portInfo(arg string) error {
	if arg == "all" {
		return dump.Ports(s.out, s.sw.Port.Ports(), s.format)
	}
	id, err := s.parseID(arg)
	if err != nil {
		return err
	}
	info, err := s.sw.Port.Info(id)
	if err != nil {
		return fmt.Errorf("port %s: %w", id, err)
	}
	return dump.Ports(s.out, []port.Info{info}, s.format)
}

func (s *Shell) portStats(arg string) error {
	id, err := s.parseID(arg)
	if err != nil {
		return err
	}
	stats := types.AllPortStats()
	values, err := s.sw.Port.GetStats(id, stats)
	if err != nil {
		return fmt.Errorf("port %s: %w", id, err)
	}
	return dump.Stats(s.out, stats, values, s.format)
}
