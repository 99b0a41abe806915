// Package script replays recorded pointer and key events against an editor.
//
// A script is a TOML file of [[event]] tables:
//
//	[[event]]
//	type = "press"
//	at = [-170, -228]
//	modifiers = ["ctrl"]
//
//	[[event]]
//	type = "select"
//	nodes = [1]
package script

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/msalah0e/nodeweave/internal/editor"
	"github.com/msalah0e/nodeweave/internal/geom"
	"github.com/msalah0e/nodeweave/internal/ident"
	"github.com/msalah0e/nodeweave/internal/interact"
	"github.com/msalah0e/nodeweave/internal/scene"
)

// Event types.
const (
	Press   = "press"
	Move    = "move"
	Release = "release"
	Delete  = "delete"
	Focus   = "focus"
	Blur    = "blur"
	Cancel  = "cancel"
	Select  = "select"
	Undo    = "undo"
	Redo    = "redo"
	Copy    = "copy"
	Cut     = "cut"
	Paste   = "paste"
)

// ErrInvalidScript is returned for scripts that do not parse or validate.
var ErrInvalidScript = errors.New("invalid script")

var validate = validator.New()

// Event is one scripted input.
type Event struct {
	Type      string     `toml:"type" validate:"oneof=press move release delete focus blur cancel select undo redo copy cut paste"`
	At        []float64  `toml:"at" validate:"omitempty,len=2"`
	Modifiers []string   `toml:"modifiers" validate:"dive,oneof=ctrl shift"`
	Nodes     []ident.ID `toml:"nodes"`
	Edges     []ident.ID `toml:"edges"`
}

// Script is an ordered list of events.
type Script struct {
	Events []Event `toml:"event" validate:"dive"`
}

// Result is the outcome of one event.
type Result struct {
	Index int
	Type  string
	// OK is the boolean the controller returned, or true for commands that
	// completed without error.
	OK    bool
	State scene.Mode
	Err   error
}

// Parse decodes and validates a script.
func Parse(data []byte) (*Script, error) {
	var s Script
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("%w: unknown key %s", ErrInvalidScript, undec[0])
	}
	if err := validate.Struct(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	for i, ev := range s.Events {
		if needsPoint(ev.Type) && ev.At == nil {
			return nil, fmt.Errorf("%w: event %d (%s) needs at", ErrInvalidScript, i, ev.Type)
		}
	}
	return &s, nil
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func needsPoint(typ string) bool {
	return typ == Press || typ == Move || typ == Release
}

func (ev Event) pointer() interact.PointerEvent {
	pe := interact.PointerEvent{Pos: ev.point()}
	for _, m := range ev.Modifiers {
		switch strings.ToLower(m) {
		case "ctrl":
			pe.Modifiers |= interact.ModCtrl
		case "shift":
			pe.Modifiers |= interact.ModShift
		}
	}
	return pe
}

func (ev Event) point() geom.Point {
	if len(ev.At) != 2 {
		return geom.Point{}
	}
	return geom.Pt(ev.At[0], ev.At[1])
}

// Player runs scripts against one editor.
type Player struct {
	editor *editor.Editor
	logger *zap.Logger
	// StopOnError ends playback at the first failing event.
	StopOnError bool
}

func NewPlayer(e *editor.Editor, logger *zap.Logger) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Player{editor: e, logger: logger, StopOnError: true}
}

// Play runs every event in order and returns one result per event run.
// The error is the first event error, if any.
func (p *Player) Play(s *Script) ([]Result, error) {
	var (
		results []Result
		first   error
	)
	for i, ev := range s.Events {
		ok, err := p.step(ev)
		r := Result{Index: i, Type: ev.Type, OK: ok, State: p.editor.Controller.State(), Err: err}
		results = append(results, r)
		p.logger.Debug("event played",
			zap.Int("index", i),
			zap.String("type", ev.Type),
			zap.Bool("ok", ok),
			zap.Stringer("state", r.State),
			zap.Error(err))
		if err != nil {
			if first == nil {
				first = fmt.Errorf("event %d (%s): %w", i, ev.Type, err)
			}
			if p.StopOnError {
				break
			}
		}
	}
	return results, first
}

func (p *Player) step(ev Event) (bool, error) {
	e := p.editor
	ctl := e.Controller
	switch ev.Type {
	case Press:
		return ctl.Press(ev.pointer()), nil
	case Move:
		ctl.Move(ev.pointer())
		return true, nil
	case Release:
		return ctl.Release(ev.pointer()), nil
	case Delete:
		return e.Delete(), nil
	case Focus:
		ctl.FocusContent()
		return ctl.State() == scene.ModeNodeEdit, nil
	case Blur:
		ctl.BlurContent()
		return true, nil
	case Cancel:
		ctl.Cancel()
		return true, nil
	case Select:
		if err := e.Select(ev.Nodes, ev.Edges); err != nil {
			return false, err
		}
		return true, nil
	case Undo:
		return e.History.CanUndo(), e.Undo()
	case Redo:
		return e.History.CanRedo(), e.Redo()
	case Copy:
		_, err := e.Copy()
		return err == nil, err
	case Cut:
		_, err := e.Cut()
		return err == nil, err
	case Paste:
		var at *geom.Point
		if ev.At != nil {
			pt := ev.point()
			at = &pt
		}
		err := e.Paste(at)
		return err == nil, err
	}
	return false, fmt.Errorf("%w: unknown event type %q", ErrInvalidScript, ev.Type)
}
