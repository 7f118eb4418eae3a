package cli_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/ngtmpls/cmd/ngtmpls/cli"
)

func TestPosition_Resolve(t *testing.T) {
	text := "package app\n\nvar x = `<p>é{{y}}</p>`\n"

	tests := []struct {
		name     string
		pos      cli.Position
		expected int
		wantErr  bool
	}{
		{name: "offset", pos: cli.Position{Offset: 5}, expected: 5},
		{name: "offset at end", pos: cli.Position{Offset: len(text)}, expected: len(text)},
		{name: "offset past end", pos: cli.Position{Offset: len(text) + 1}, wantErr: true},
		{name: "line and column", pos: cli.Position{Offset: -1, Line: 3, Col: 1}, expected: 13},
		{name: "columns count characters", pos: cli.Position{Offset: -1, Line: 3, Col: 14}, expected: 27},
		{name: "line out of range", pos: cli.Position{Offset: -1, Line: 9, Col: 1}, wantErr: true},
		{name: "nothing given", pos: cli.Position{Offset: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.pos.Resolve(text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPosition_Flags(t *testing.T) {
	parse := func(args ...string) (cli.Position, error) {
		cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		var pos cli.Position
		pos.Register(cmd)
		cmd.SetArgs(args)
		err := cmd.Execute()
		return pos, err
	}

	pos, err := parse("--line", "3", "--col", "4")
	require.NoError(t, err)
	assert.Equal(t, cli.Position{Offset: -1, Line: 3, Col: 4}, pos)

	_, err = parse("--line", "3")
	assert.Error(t, err, "line needs col")

	_, err = parse("--offset", "3", "--line", "1", "--col", "1")
	assert.Error(t, err, "offset excludes line")
}

func TestLogFlags_Install(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{Use: "x"}
	cmd.SetContext(context.Background())

	flags := &cli.LogFlags{Debug: true, JSON: true}
	flags.Install(cmd, &buf)

	zerolog.Ctx(cmd.Context()).Debug().Msg("hello")
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, cli.WriteJSON(&buf, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}
