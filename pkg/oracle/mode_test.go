package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultModes(t *testing.T) {
	s := DefaultModes()

	assert.Equal(t, []string{
		"callees", "callers", "callgraph", "callstack", "definition", "describe",
		"freevars", "implements", "peers", "pointsto", "referrers", "what", "whicherrs",
	}, s.Names())

	for _, m := range s.Modes() {
		assert.True(t, m.Annotate, "%s should be annotated", m.Name)
		assert.NotEmpty(t, m.Short, "%s should have a description", m.Name)
		assert.True(t, IsBuiltin(m.Name))
	}

	callgraph, err := s.Lookup("callgraph")
	require.NoError(t, err)
	assert.Equal(t, PositionOptional, callgraph.Position)
}

func TestModeSet_LookupUnknown(t *testing.T) {
	_, err := DefaultModes().Lookup("explain")
	require.ErrorIs(t, err, ErrUnknownMode)
	assert.Contains(t, err.Error(), "explain")
}

func TestModeSet_Add(t *testing.T) {
	s := DefaultModes()

	require.NoError(t, s.Add(Mode{Name: "describe-json", Args: []string{"-format=json"}}))
	m, err := s.Lookup("describe-json")
	require.NoError(t, err)
	assert.Equal(t, PositionRequired, m.Position, "position defaults to required")
	assert.False(t, IsBuiltin("describe-json"))

	// Replacing a built-in
	require.NoError(t, s.Add(Mode{Name: "describe", Position: PositionRequired, Annotate: false}))
	m, err = s.Lookup("describe")
	require.NoError(t, err)
	assert.False(t, m.Annotate)
	assert.Equal(t, 14, s.Len())
}

func TestModeSet_AddInvalid(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
	}{
		{"empty name", Mode{}},
		{"upper case", Mode{Name: "Describe"}},
		{"space", Mode{Name: "two words"}},
		{"leading dash", Mode{Name: "-x"}},
		{"bad position", Mode{Name: "x", Position: "sometimes"}},
		{"bad command", Mode{Name: "x", Command: "rm -rf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, NewModeSet().Add(tt.mode))
		})
	}
}

func TestDefaultArgs(t *testing.T) {
	pos := &Position{File: "/src/a.go", Start: 42, End: 42}

	tests := []struct {
		name    string
		mode    Mode
		query   Query
		want    []string
		wantErr error
	}{
		{
			name:  "required with position",
			mode:  Mode{Name: "describe", Position: PositionRequired},
			query: Query{Pos: pos},
			want:  []string{"-pos=/src/a.go:#42", "describe"},
		},
		{
			name:    "required without position",
			mode:    Mode{Name: "describe", Position: PositionRequired},
			query:   Query{},
			wantErr: ErrPositionRequired,
		},
		{
			name:  "optional without position",
			mode:  Mode{Name: "callgraph", Position: PositionOptional},
			query: Query{Scope: []string{"./cmd/app"}},
			want:  []string{"callgraph", "./cmd/app"},
		},
		{
			name:  "optional with position",
			mode:  Mode{Name: "callgraph", Position: PositionOptional},
			query: Query{Pos: pos},
			want:  []string{"-pos=/src/a.go:#42", "callgraph"},
		},
		{
			name:  "none ignores position",
			mode:  Mode{Name: "stats", Position: PositionNone},
			query: Query{Pos: pos},
			want:  []string{"stats"},
		},
		{
			name:    "unlocated position",
			mode:    Mode{Name: "describe", Position: PositionRequired},
			query:   Query{Pos: &Position{File: "a.go", Start: -1, End: -1, Line: 3, Column: 1}},
			wantErr: ErrInvalidPosition,
		},
		{
			name:  "mode and query args",
			mode:  Mode{Name: "describe", Position: PositionRequired, Args: []string{"-format=json"}},
			query: Query{Pos: pos, Args: []string{"-reflect"}, Scope: []string{"a", "b"}},
			want:  []string{"-pos=/src/a.go:#42", "-format=json", "-reflect", "describe", "a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.mode.BuildArgs(tt.query)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMode_Subcommand(t *testing.T) {
	m := Mode{Name: "describe-json", Command: "describe", Position: PositionRequired, Args: []string{"-format=json"}}

	got, err := m.BuildArgs(Query{Pos: &Position{File: "a.go", Start: 3, End: 3}})
	require.NoError(t, err)
	assert.Equal(t, []string{"-pos=a.go:#3", "-format=json", "describe"}, got)
	assert.Equal(t, "describe", m.Subcommand())
	assert.Equal(t, "what", Mode{Name: "what"}.Subcommand())
}

func TestMode_CustomBuilder(t *testing.T) {
	m := Mode{
		Name: "guru-describe",
		Build: func(m Mode, q Query) ([]string, error) {
			return []string{"-scope", "example.com/...", "describe", q.Pos.String()}, nil
		},
	}

	got, err := m.BuildArgs(Query{Pos: &Position{File: "a.go", Start: 1, End: 1}})
	require.NoError(t, err)
	assert.Equal(t, []string{"-scope", "example.com/...", "describe", "a.go:#1"}, got)
}
