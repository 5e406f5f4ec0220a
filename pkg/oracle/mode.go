package oracle

import (
	"fmt"
	"regexp"
	"sort"
)

// PositionRequirement says whether a mode takes a -pos flag.
type PositionRequirement string

const (
	PositionRequired PositionRequirement = "required"
	PositionOptional PositionRequirement = "optional"
	PositionNone     PositionRequirement = "none"
)

// Valid reports whether p is one of the known requirements.
func (p PositionRequirement) Valid() bool {
	switch p {
	case PositionRequired, PositionOptional, PositionNone:
		return true
	}
	return false
}

// Query is a single oracle request.
type Query struct {
	// Mode is the name of the mode to run.
	Mode string

	// Pos is the queried position. Nil when the mode runs without one.
	Pos *Position

	// Scope lists the packages the analysis covers.
	Scope []string

	// Args are extra flags placed before the mode name.
	Args []string
}

// ArgBuilder builds the oracle arguments (everything after the program
// name) for a query.
type ArgBuilder func(m Mode, q Query) ([]string, error)

// Mode describes one oracle subcommand: how its arguments are built and
// whether its output is scanned for locations.
type Mode struct {
	// Name identifies the mode.
	Name string

	// Command is the oracle subcommand to run. Empty means Name.
	Command string

	// Short is a one-line description.
	Short string

	// Position is whether the mode takes -pos.
	Position PositionRequirement

	// Annotate enables location scanning of the output. When false the
	// output is passed through as plain text.
	Annotate bool

	// Args are flags always placed before the mode name.
	Args []string

	// Build overrides DefaultArgs when set.
	Build ArgBuilder
}

// BuildArgs returns the oracle arguments for q.
func (m Mode) BuildArgs(q Query) ([]string, error) {
	if m.Build != nil {
		return m.Build(m, q)
	}
	return DefaultArgs(m, q)
}

// Subcommand returns the oracle subcommand the mode runs.
func (m Mode) Subcommand() string {
	if m.Command != "" {
		return m.Command
	}
	return m.Name
}

// DefaultArgs lays arguments out as the oracle expects them:
//
//	-pos=<file>:#<offset> [mode args] [query args] <mode> [scope...]
func DefaultArgs(m Mode, q Query) ([]string, error) {
	var args []string

	switch m.Position {
	case PositionRequired:
		if q.Pos == nil {
			return nil, fmt.Errorf("%s: %w", m.Name, ErrPositionRequired)
		}
		fallthrough
	case PositionOptional:
		if q.Pos != nil {
			if !q.Pos.HasOffset() {
				return nil, fmt.Errorf("%s: %w: %s has no byte offset", m.Name, ErrInvalidPosition, q.Pos.File)
			}
			args = append(args, "-pos="+q.Pos.String())
		}
	}

	args = append(args, m.Args...)
	args = append(args, q.Args...)
	args = append(args, m.Subcommand())
	args = append(args, q.Scope...)

	return args, nil
}

// builtinModes are the subcommands of the oracle tool.
var builtinModes = []Mode{
	{Name: "callees", Short: "Show possible targets of the selected function call", Position: PositionRequired},
	{Name: "callers", Short: "Show possible callers of the selected function", Position: PositionRequired},
	{Name: "callgraph", Short: "Show complete callgraph of program", Position: PositionOptional},
	{Name: "callstack", Short: "Show path from callgraph root to selected function", Position: PositionRequired},
	{Name: "definition", Short: "Show declaration of selected identifier", Position: PositionRequired},
	{Name: "describe", Short: "Describe selected syntax: definition, methods, etc", Position: PositionRequired},
	{Name: "freevars", Short: "Show free variables of selection", Position: PositionRequired},
	{Name: "implements", Short: "Show 'implements' relation for selected type or method", Position: PositionRequired},
	{Name: "peers", Short: "Show send/receive corresponding to selected channel op", Position: PositionRequired},
	{Name: "pointsto", Short: "Show variables that the selected pointer may point to", Position: PositionRequired},
	{Name: "referrers", Short: "Show all refs to entity denoted by selected identifier", Position: PositionRequired},
	{Name: "what", Short: "Show basic information about the selected syntax node", Position: PositionRequired},
	{Name: "whicherrs", Short: "Show possible values of the selected error variable", Position: PositionRequired},
}

var modeNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ValidModeName reports whether name can be used as a mode (and as a CLI
// subcommand).
func ValidModeName(name string) bool {
	return modeNamePattern.MatchString(name)
}

// ModeSet maps mode names to modes.
type ModeSet struct {
	modes map[string]Mode
}

// NewModeSet creates an empty mode set.
func NewModeSet() *ModeSet {
	return &ModeSet{modes: make(map[string]Mode)}
}

// DefaultModes returns a set holding the oracle's built-in modes, all of them
// annotated.
func DefaultModes() *ModeSet {
	s := NewModeSet()
	for _, m := range builtinModes {
		m.Annotate = true
		s.modes[m.Name] = m
	}
	return s
}

// IsBuiltin reports whether name is one of the oracle's own modes.
func IsBuiltin(name string) bool {
	for _, m := range builtinModes {
		if m.Name == name {
			return true
		}
	}
	return false
}

// Add inserts m, replacing any mode with the same name.
func (s *ModeSet) Add(m Mode) error {
	if !ValidModeName(m.Name) {
		return fmt.Errorf("invalid mode name %q", m.Name)
	}
	if m.Position == "" {
		m.Position = PositionRequired
	}
	if m.Command != "" && !ValidModeName(m.Command) {
		return fmt.Errorf("mode %s: invalid command %q", m.Name, m.Command)
	}
	if !m.Position.Valid() {
		return fmt.Errorf("mode %s: invalid position %q (must be required, optional, or none)", m.Name, m.Position)
	}
	s.modes[m.Name] = m
	return nil
}

// Lookup returns the mode called name.
func (s *ModeSet) Lookup(name string) (Mode, error) {
	m, ok := s.modes[name]
	if !ok {
		return Mode{}, fmt.Errorf("%w %q", ErrUnknownMode, name)
	}
	return m, nil
}

// Names returns the mode names in sorted order.
func (s *ModeSet) Names() []string {
	names := make([]string, 0, len(s.modes))
	for name := range s.modes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Modes returns all modes sorted by name.
func (s *ModeSet) Modes() []Mode {
	names := s.Names()
	modes := make([]Mode, len(names))
	for i, name := range names {
		modes[i] = s.modes[name]
	}
	return modes
}

// Len returns the number of modes.
func (s *ModeSet) Len() int {
	return len(s.modes)
}
