package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	tt "github.com/gnolang/lambdaloc/internal/types"
)

type mockLocateEngine struct {
	mock.Mock
}

func (m *mockLocateEngine) Locate(ctx context.Context, filename string, line, column int) (tt.Location, error) {
	args := m.Called(filename, line, column)
	return args.Get(0).(tt.Location), args.Error(1)
}

func (m *mockLocateEngine) Locations(ctx context.Context, filename string) ([]tt.Location, error) {
	args := m.Called(filename)
	return args.Get(0).([]tt.Location), args.Error(1)
}

const sample = `package sample

func Apply(f func(int) int) int { return f(1) }

func Run() int {
	return Apply(func(x int) int { return x + 1 })
}
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.go")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	return path
}

func TestParsePosition(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		args    []string
		file    string
		line    int
		column  int
		wantErr bool
	}{
		{name: "separate args", args: []string{"a.go", "6", "15"}, file: "a.go", line: 6, column: 15},
		{name: "joined", args: []string{"a.go:6:15"}, file: "a.go", line: 6, column: 15},
		{name: "colon in path", args: []string{"C:/src/a.go:6:15"}, file: "C:/src/a.go", line: 6, column: 15},
		{name: "column disabled", args: []string{"a.go", "6", "-1"}, file: "a.go", line: 6, column: -1},
		{name: "missing column", args: []string{"a.go:6"}, wantErr: true},
		{name: "two args", args: []string{"a.go", "6"}, wantErr: true},
		{name: "bad line", args: []string{"a.go", "x", "1"}, wantErr: true},
		{name: "bad column", args: []string{"a.go", "1", "y"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			file, line, column, err := parsePosition(tc.args)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.file, file)
			assert.Equal(t, tc.line, line)
			assert.Equal(t, tc.column, column)
		})
	}
}

func TestRunLocateJSON(t *testing.T) {
	t.Parallel()
	path := writeSample(t)
	loc := tt.Location{
		Filename:  path,
		Line:      6,
		Column:    15,
		Found:     true,
		Method:    "Run.func1",
		Signature: "Run.func1(x int) int",
		Symbol:    "sample.Run.func1",
	}

	engine := new(mockLocateEngine)
	engine.On("Locate", path, 6, 15).Return(loc, nil)

	var out bytes.Buffer
	found, err := runLocate(context.Background(), zap.NewNop(), engine, path, 6, 15, true, &out)
	require.NoError(t, err)
	assert.True(t, found)

	var got tt.Location
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, loc.Method, got.Method)
	assert.Equal(t, loc.Symbol, got.Symbol)
	engine.AssertExpectations(t)
}

func TestRunLocateText(t *testing.T) {
	t.Parallel()
	path := writeSample(t)

	engine := new(mockLocateEngine)
	engine.On("Locate", path, 6, 15).Return(tt.Location{
		Filename: path, Line: 6, Column: 15, Found: true, Method: "Run.func1",
	}, nil)
	engine.On("Locate", path, 6, 9).Return(tt.Location{
		Filename: path, Line: 6, Column: 9, Note: "no function literal starts here (found identifier)",
	}, nil)

	var out bytes.Buffer
	found, err := runLocate(context.Background(), zap.NewNop(), engine, path, 6, 15, false, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Contains(t, out.String(), "Run.func1")
	assert.Contains(t, out.String(), "return Apply(func(x int) int { return x + 1 })")

	out.Reset()
	found, err = runLocate(context.Background(), zap.NewNop(), engine, path, 6, 9, false, &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Contains(t, out.String(), "found identifier")
}

func TestRunLocateError(t *testing.T) {
	t.Parallel()
	engine := new(mockLocateEngine)
	engine.On("Locate", "missing.go", 1, 1).Return(tt.Location{}, errors.New("no such file"))

	var out bytes.Buffer
	found, err := runLocate(context.Background(), zap.NewNop(), engine, "missing.go", 1, 1, false, &out)
	assert.Error(t, err)
	assert.False(t, found)
	assert.Empty(t, out.String())
}

func TestRunListJSON(t *testing.T) {
	t.Parallel()
	path := writeSample(t)
	locs := []tt.Location{{Filename: path, Line: 6, Column: 15, Found: true, Method: "Run.func1"}}

	engine := new(mockLocateEngine)
	engine.On("Locations", path).Return(locs, nil)

	var out bytes.Buffer
	err := runList(context.Background(), zap.NewNop(), engine, []string{path}, true, "", &out, nil)
	require.NoError(t, err)

	var got map[string][]tt.Location
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got[path], 1)
	assert.Equal(t, "Run.func1", got[path][0].Method)

	outFile := filepath.Join(t.TempDir(), "out.json")
	out.Reset()
	require.NoError(t, runList(context.Background(), zap.NewNop(), engine, []string{path}, true, outFile, &out, nil))
	assert.Empty(t, out.String())
	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Run.func1")
}

func TestRunListText(t *testing.T) {
	t.Parallel()
	path := writeSample(t)

	engine := new(mockLocateEngine)
	engine.On("Locations", path).Return([]tt.Location{
		{Filename: path, Line: 6, Column: 15, Found: true, Method: "Run.func1"},
	}, nil)

	var out bytes.Buffer
	require.NoError(t, runList(context.Background(), zap.NewNop(), engine, []string{path}, false, "", &out, nil))
	assert.Contains(t, out.String(), "Run.func1")
	assert.Contains(t, out.String(), path)
}

func TestInitConfigurationFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), ".lambdaloc.yaml")
	require.NoError(t, initConfigurationFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "lambdaloc")
}

func TestExecuteLocate(t *testing.T) {
	path := writeSample(t)

	prevLogger, prevCfg, prevTimeout, prevJson := logger, cfgFile, timeout, locateJsonOutput
	t.Cleanup(func() {
		logger, cfgFile, timeout, locateJsonOutput = prevLogger, prevCfg, prevTimeout, prevJson
	})
	logger = zap.NewNop()
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
	timeout = time.Minute
	locateJsonOutput = true

	var out bytes.Buffer
	require.NoError(t, executeLocate([]string{path, "6", "15"}, &out))

	var got tt.Location
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.True(t, got.Found)
	assert.Equal(t, "Run.func1", got.Method)

	out.Reset()
	err := executeLocate([]string{path + ":6:9"}, &out)
	assert.ErrorIs(t, err, errNotFound)
	assert.NotEmpty(t, out.String())

	err = executeLocate([]string{path, "99", "1"}, &out)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errNotFound)

	cfgFile = filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("mode: nope\n"), 0o644))
	err = executeLocate([]string{path, "6", "15"}, &out)
	assert.Error(t, err)
}
