package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/tal-engine/tal/internal/dispatcher"
	"github.com/tal-engine/tal/internal/handlers"
	"github.com/tal-engine/tal/internal/parser"
)

// Console reads one command per line and prints the engine's replies.
type Console struct {
	in     io.Reader
	out    io.Writer
	parser *parser.Parser
	d      *dispatcher.Dispatcher
	Prompt string
}

// NewConsole creates a console over the given streams.
func NewConsole(in io.Reader, out io.Writer, p *parser.Parser, d *dispatcher.Dispatcher) *Console {
	return &Console{in: in, out: out, parser: p, d: d, Prompt: "> "}
}

// Run processes lines until quit, end of input or a completed mission.
func (c *Console) Run() error {
	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, c.Prompt)
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		if c.handle(scanner.Text()) {
			return nil
		}
	}
}

// handle executes one line and reports whether the session is over.
func (c *Console) handle(line string) bool {
	ev, err := c.parser.Parse(line)
	if errors.Is(err, parser.ErrEmpty) {
		return false
	}
	if err != nil {
		fmt.Fprintln(c.out, "ERROR:", err)
		return false
	}

	switch ev.Command {
	case parser.CmdHelp:
		fmt.Fprint(c.out, parser.Help())
		return false
	case parser.CmdQuit:
		return true
	}

	res, err := c.d.Dispatch(ev)
	reply, _ := res.(handlers.Reply)
	if text := reply.Text(); text != "" {
		fmt.Fprintln(c.out, text)
	}
	if err != nil {
		fmt.Fprintln(c.out, "REJECTED:", err)
		return errors.Is(err, dispatcher.ErrClosed)
	}
	return reply.Complete
}
