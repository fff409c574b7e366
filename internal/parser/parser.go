// Package parser turns console lines into dispatcher events and decodes the
// arguments of each command into typed values.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/tal-engine/tal/internal/dispatcher"
	"github.com/tal-engine/tal/internal/hexgraph"
	"github.com/tal-engine/tal/internal/unit"
)

var (
	// ErrEmpty is returned for a blank line.
	ErrEmpty = errors.New("empty command")
	// ErrUnknownCommand is returned for a word that names no command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUsage is returned when a command has the wrong arguments.
	ErrUsage = errors.New("usage")
)

// Dispatcher command names.
const (
	CmdHelp    = ":HELP:"
	CmdQuit    = ":QUIT:"
	CmdStatus  = ":STATUS:"
	CmdHexes   = ":HEXES:"
	CmdMove    = ":MOVE:"
	CmdAlt     = ":ALT:"
	CmdFire    = ":FIRE:"
	CmdSkip    = ":SKIP:"
	CmdAdvance = ":ADVANCE:"
	CmdRecord  = ":RECORD:"
)

// Command describes one console word.
type Command struct {
	Word    string
	Name    string
	MinArgs int
	MaxArgs int
	Usage   string
	Help    string
}

// Commands lists the console commands in help order.
var Commands = []Command{
	{"help", CmdHelp, 0, 0, "help", "show this list"},
	{"status", CmdStatus, 0, 0, "status", "board, aircraft and battalion state"},
	{"hexes", CmdHexes, 0, 1, "hexes [hex]", "adjacency and ridges, or the neighbours of one hex"},
	{"move", CmdMove, 2, 2, "move <aircraft> <hex>", "move to an adjacent hex"},
	{"alt", CmdAlt, 1, 2, "alt <aircraft> [HIGH|LOW]", "change altitude band"},
	{"fire", CmdFire, 3, 3, "fire <aircraft> <enemy> <strike|cannon>", "attack a ground unit"},
	{"skip", CmdSkip, 1, 1, "skip <aircraft>", "pass this round"},
	{"end", CmdAdvance, 0, 0, "end", "finish the player phase; enemy fire follows"},
	{"quit", CmdQuit, 0, 0, "quit", "abandon the mission"},
}

var aliases = map[string]string{
	"?":        "help",
	"s":        "status",
	"m":        "move",
	"a":        "alt",
	"altitude": "alt",
	"f":        "fire",
	"attack":   "fire",
	"pass":     "skip",
	"e":        "end",
	"advance":  "end",
	"exit":     "quit",
	"q":        "quit",
}

// Parser converts console input. It holds no game state.
type Parser struct {
	logger *slog.Logger
	byWord map[string]Command
	now    func() time.Time
}

// NewParser creates a new parser with only a logger dependency
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Parser{
		logger: logger,
		byWord: make(map[string]Command, len(Commands)),
		now:    time.Now,
	}
	for _, c := range Commands {
		p.byWord[c.Word] = c
	}
	return p
}

// Fields splits a line on whitespace and strips surrounding double quotes.
func Fields(line string) []string {
	fields := strings.Fields(line)
	out := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, `"`); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Parse converts one console line into a dispatcher event.
func (p *Parser) Parse(line string) (dispatcher.Event, error) {
	fields := Fields(line)
	if len(fields) == 0 {
		return dispatcher.Event{}, ErrEmpty
	}

	word := strings.ToLower(fields[0])
	if alias, ok := aliases[word]; ok {
		word = alias
	}
	cmd, ok := p.byWord[word]
	if !ok {
		return dispatcher.Event{}, fmt.Errorf("%w %q, type help", ErrUnknownCommand, fields[0])
	}

	args := fields[1:]
	if len(args) < cmd.MinArgs || len(args) > cmd.MaxArgs {
		return dispatcher.Event{}, fmt.Errorf("%w: %s", ErrUsage, cmd.Usage)
	}

	p.logger.Debug("Parsed command", "command", cmd.Name, "args", args)
	return dispatcher.Event{Command: cmd.Name, Args: args, Timestamp: p.now()}, nil
}

// Help renders the command list.
func Help() string {
	var b strings.Builder
	for _, c := range Commands {
		fmt.Fprintf(&b, "  %-42s %s\n", c.Usage, c.Help)
	}
	return b.String()
}

// usage returns the usage error of the command registered under name.
func usage(name string) error {
	for _, c := range Commands {
		if c.Name == name {
			return fmt.Errorf("%w: %s", ErrUsage, c.Usage)
		}
	}
	return ErrUsage
}

// UnitID normalizes an aircraft or enemy id: a1 and A1 are the same unit.
func UnitID(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ParseHex parses a hex number. "4", "4.0" and "h4" are all hex 4.
func ParseHex(s string) (hexgraph.Hex, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "h")
	if v, err := strconv.Atoi(s); err == nil {
		return hexgraph.Hex(v), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("%q is not a hex number: %w", s, hexgraph.ErrInvalidHex)
	}
	return hexgraph.Hex(int(f)), nil
}

// ParseMove decodes move arguments.
func ParseMove(args []string) (aircraft string, to hexgraph.Hex, err error) {
	if len(args) != 2 {
		return "", 0, usage(CmdMove)
	}
	to, err = ParseHex(args[1])
	if err != nil {
		return "", 0, err
	}
	return UnitID(args[0]), to, nil
}

// ParseAlt decodes altitude arguments. toggle is true when no band is given.
func ParseAlt(args []string) (aircraft string, alt unit.Altitude, toggle bool, err error) {
	switch len(args) {
	case 1:
		return UnitID(args[0]), "", true, nil
	case 2:
		alt, err = unit.ParseAltitude(args[1])
		if err != nil {
			return "", "", false, err
		}
		return UnitID(args[0]), alt, false, nil
	}
	return "", "", false, usage(CmdAlt)
}

// ParseFire decodes fire arguments.
func ParseFire(args []string) (aircraft, target string, w unit.WeaponType, err error) {
	if len(args) != 3 {
		return "", "", "", usage(CmdFire)
	}
	w, err = unit.ParseWeapon(args[2])
	if err != nil {
		return "", "", "", err
	}
	return UnitID(args[0]), UnitID(args[1]), w, nil
}

// ParseSkip decodes skip arguments.
func ParseSkip(args []string) (string, error) {
	if len(args) != 1 {
		return "", usage(CmdSkip)
	}
	return UnitID(args[0]), nil
}

// ParseHexes decodes the optional hex of the hexes query. ok is false when
// the whole board is requested.
func ParseHexes(args []string) (h hexgraph.Hex, ok bool, err error) {
	switch len(args) {
	case 0:
		return 0, false, nil
	case 1:
		h, err = ParseHex(args[0])
		return h, err == nil, err
	}
	return 0, false, usage(CmdHexes)
}
