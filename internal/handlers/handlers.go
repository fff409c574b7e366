// Package handlers binds engine commands and queries to dispatcher command names.
package handlers

import (
	"fmt"
	"strings"

	"github.com/tal-engine/tal/internal/dispatcher"
	"github.com/tal-engine/tal/internal/engine"
	"github.com/tal-engine/tal/internal/logging"
	"github.com/tal-engine/tal/internal/mission"
	"github.com/tal-engine/tal/internal/parser"
	"github.com/tal-engine/tal/pkg/core"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Engine         *engine.Engine
	MissionContext *mission.Context
	LogManager     *logging.SlogManager
}

// Reply is what a command handler returns to the console.
type Reply struct {
	Lines    []string
	State    engine.State
	Complete bool
}

// Text joins the reply lines.
func (r Reply) Text() string {
	return strings.Join(r.Lines, "\n")
}

// Service runs console commands against one engine. Handlers are registered
// synchronous: the engine is owned by the goroutine that dispatches.
type Service struct {
	deps         Dependencies
	writeLogFunc func(functionName, data, level string)
}

// NewService creates a new handler service
func NewService(deps Dependencies) *Service {
	s := &Service{deps: deps}
	s.writeLogFunc = func(functionName, data, level string) {
		if deps.LogManager != nil {
			deps.LogManager.WriteLog(functionName, data, level)
		}
	}
	return s
}

func (s *Service) writeLog(functionName, data, level string) {
	s.writeLogFunc(functionName, data, level)
}

// RegisterHandlers registers every game command with the dispatcher.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(parser.CmdMove, s.handleMove, dispatcher.Logged())
	d.Register(parser.CmdAlt, s.handleAlt, dispatcher.Logged())
	d.Register(parser.CmdFire, s.handleFire, dispatcher.Logged())
	d.Register(parser.CmdSkip, s.handleSkip, dispatcher.Logged())
	d.Register(parser.CmdAdvance, s.handleAdvance, dispatcher.Logged())
	d.Register(parser.CmdStatus, s.handleStatus)
	d.Register(parser.CmdHexes, s.handleHexes)
}

// reply converts an engine result and keeps the mission context in step.
func (s *Service) reply(function string, res engine.Result, err error) (any, error) {
	eng := s.deps.Engine
	if s.deps.MissionContext != nil {
		s.deps.MissionContext.SetProgress(eng.Round(), eng.State().String())
	}

	r := Reply{State: res.State, Complete: eng.Complete()}
	for _, ev := range res.Events {
		if ev.Kind == core.EventRejected {
			continue
		}
		r.Lines = append(r.Lines, ev.Message)
	}
	if err != nil {
		if engine.IsRejection(err) {
			s.writeLog(function, fmt.Sprintf("Rejected: %v", err), "DEBUG")
		} else {
			s.writeLog(function, fmt.Sprintf("Error: %v", err), "ERROR")
		}
		return r, err
	}
	if eng.Complete() {
		r.Lines = append(r.Lines, Debrief(eng))
	}
	return r, nil
}

func (s *Service) handleMove(e dispatcher.Event) (any, error) {
	id, to, err := parser.ParseMove(e.Args)
	if err != nil {
		return nil, err
	}
	res, err := s.deps.Engine.Move(id, to)
	return s.reply(parser.CmdMove, res, err)
}

func (s *Service) handleAlt(e dispatcher.Event) (any, error) {
	id, alt, toggle, err := parser.ParseAlt(e.Args)
	if err != nil {
		return nil, err
	}
	var res engine.Result
	if toggle {
		res, err = s.deps.Engine.ChangeAltitude(id)
	} else {
		res, err = s.deps.Engine.SetAltitude(id, alt)
	}
	return s.reply(parser.CmdAlt, res, err)
}

func (s *Service) handleFire(e dispatcher.Event) (any, error) {
	id, target, w, err := parser.ParseFire(e.Args)
	if err != nil {
		return nil, err
	}
	res, err := s.deps.Engine.Fire(id, target, w)
	return s.reply(parser.CmdFire, res, err)
}

func (s *Service) handleSkip(e dispatcher.Event) (any, error) {
	id, err := parser.ParseSkip(e.Args)
	if err != nil {
		return nil, err
	}
	res, err := s.deps.Engine.Skip(id)
	return s.reply(parser.CmdSkip, res, err)
}

func (s *Service) handleAdvance(e dispatcher.Event) (any, error) {
	res, err := s.deps.Engine.AdvanceTurn()
	return s.reply(parser.CmdAdvance, res, err)
}

func (s *Service) handleStatus(e dispatcher.Event) (any, error) {
	eng := s.deps.Engine
	return Reply{Lines: []string{Status(eng)}, State: eng.State(), Complete: eng.Complete()}, nil
}

func (s *Service) handleHexes(e dispatcher.Event) (any, error) {
	h, one, err := parser.ParseHexes(e.Args)
	if err != nil {
		return nil, err
	}
	eng := s.deps.Engine
	var text string
	if one {
		text, err = Neighbours(eng.Graph(), h)
		if err != nil {
			return nil, err
		}
	} else {
		text = Board(eng.Graph())
	}
	return Reply{Lines: []string{text}, State: eng.State(), Complete: eng.Complete()}, nil
}
