package parser

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tal-engine/tal/internal/hexgraph"
	"github.com/tal-engine/tal/internal/unit"
)

func newTestParser() *Parser {
	p := NewParser(slog.Default())
	p.now = func() time.Time { return time.Unix(100, 0) }
	return p
}

func TestNewParser(t *testing.T) {
	p := NewParser(nil)
	require.NotNil(t, p)
	assert.Len(t, p.byWord, len(Commands))
}

func TestFields(t *testing.T) {
	assert.Equal(t, []string{"move", "A1", "4"}, Fields(`  move "A1"   4 `))
	assert.Empty(t, Fields(`   `))
	assert.Empty(t, Fields(`""`))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		command string
		args    []string
	}{
		{"move", "move A1 4", CmdMove, []string{"A1", "4"}},
		{"upper case word", "MOVE a1 4", CmdMove, []string{"a1", "4"}},
		{"alias", "m A1 4", CmdMove, []string{"A1", "4"}},
		{"alt toggle", "alt A1", CmdAlt, []string{"A1"}},
		{"alt band", "altitude A1 low", CmdAlt, []string{"A1", "low"}},
		{"fire", "fire A1 E1 strike", CmdFire, []string{"A1", "E1", "strike"}},
		{"skip", "pass A1", CmdSkip, []string{"A1"}},
		{"end", "end", CmdAdvance, []string{}},
		{"status", "s", CmdStatus, []string{}},
		{"hexes", "hexes 4", CmdHexes, []string{"4"}},
		{"help", "?", CmdHelp, []string{}},
		{"quit", "exit", CmdQuit, []string{}},
	}

	p := newTestParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := p.Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.command, e.Command)
			assert.Equal(t, tt.args, e.Args)
			assert.Equal(t, time.Unix(100, 0), e.Timestamp)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	p := newTestParser()

	_, err := p.Parse("   ")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = p.Parse("bomb A1")
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Contains(t, err.Error(), `"bomb"`)

	_, err = p.Parse("move A1")
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "move <aircraft> <hex>")

	_, err = p.Parse("end now")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		input   string
		want    hexgraph.Hex
		wantErr bool
	}{
		{"4", 4, false},
		{"0", 0, false},
		{"4.0", 4, false},
		{"h7", 7, false},
		{"H3", 3, false},
		{"4.5", 0, true},
		{"", 0, true},
		{"north", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, hexgraph.ErrInvalidHex)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMove(t *testing.T) {
	id, to, err := ParseMove([]string{"a1", "5"})
	require.NoError(t, err)
	assert.Equal(t, "A1", id)
	assert.Equal(t, hexgraph.Hex(5), to)

	_, _, err = ParseMove([]string{"A1", "x"})
	assert.ErrorIs(t, err, hexgraph.ErrInvalidHex)

	_, _, err = ParseMove([]string{"A1"})
	assert.ErrorIs(t, err, ErrUsage)
}

func TestParseAlt(t *testing.T) {
	id, alt, toggle, err := ParseAlt([]string{"A1"})
	require.NoError(t, err)
	assert.Equal(t, "A1", id)
	assert.True(t, toggle)
	assert.Empty(t, alt)

	_, alt, toggle, err = ParseAlt([]string{"A1", "l"})
	require.NoError(t, err)
	assert.False(t, toggle)
	assert.Equal(t, unit.Low, alt)

	_, _, _, err = ParseAlt([]string{"A1", "medium"})
	assert.ErrorIs(t, err, unit.ErrPreconditionFailed)

	_, _, _, err = ParseAlt(nil)
	assert.ErrorIs(t, err, ErrUsage)
}

func TestParseFire(t *testing.T) {
	ac, target, w, err := ParseFire([]string{"a1", "e2", "CANNON"})
	require.NoError(t, err)
	assert.Equal(t, "A1", ac)
	assert.Equal(t, "E2", target)
	assert.Equal(t, unit.Cannon, w)

	_, _, _, err = ParseFire([]string{"A1", "E2", "rockets"})
	assert.ErrorIs(t, err, unit.ErrPreconditionFailed)

	_, _, _, err = ParseFire([]string{"A1", "E2"})
	assert.ErrorIs(t, err, ErrUsage)
}

func TestParseSkip(t *testing.T) {
	id, err := ParseSkip([]string{"a2"})
	require.NoError(t, err)
	assert.Equal(t, "A2", id)

	_, err = ParseSkip(nil)
	assert.ErrorIs(t, err, ErrUsage)
}

func TestParseHexes(t *testing.T) {
	_, ok, err := ParseHexes(nil)
	require.NoError(t, err)
	assert.False(t, ok)

	h, ok, err := ParseHexes([]string{"3"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, hexgraph.Hex(3), h)

	_, _, err = ParseHexes([]string{"x"})
	assert.Error(t, err)
}

func TestHelp(t *testing.T) {
	h := Help()
	for _, c := range Commands {
		assert.Contains(t, h, c.Usage)
	}
}
