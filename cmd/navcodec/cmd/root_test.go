package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/navcodec/pkg/api"
	"github.com/ssargent/navcodec/pkg/codec"
	"github.com/ssargent/navcodec/pkg/config"
	"github.com/ssargent/navcodec/pkg/di"
	"github.com/ssargent/navcodec/pkg/journal"
	"github.com/ssargent/navcodec/pkg/logger"
	"github.com/ssargent/navcodec/pkg/navfile"
)

const sampleText = "NAV export\nunit=m\n" +
	"point 0001 51.50070 -0.12460 35.0 harbour entrance\n" +
	"end\n"

// isolate points the user config directory at a temp dir so a real config
// file never leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("HOME", dir)
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	if container == nil {
		SetContainer(di.NewContainer())
	}

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "0x85", want: 0x85},
		{in: "0X85", want: 0x85},
		{in: "133", want: 133},
		{in: "0xff", want: 255},
		{in: "0", want: 0},
		{in: "256", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "key", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseKey(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, codec.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeDecodeCommands(t *testing.T) {
	dir := isolate(t)
	txt := filepath.Join(dir, "route.txt")
	nav := filepath.Join(dir, "route.nav")
	back := filepath.Join(dir, "out", "route.txt")
	require.NoError(t, os.WriteFile(txt, []byte(sampleText), 0644))

	out, err := runCLI(t, "encode", "-k", "0x85", txt, nav)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Progress: 100%")

	out, err = runCLI(t, "decode", "--xor-key", "133", nav, back)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Decode completed successfully")

	decoded, err := os.ReadFile(back)
	require.NoError(t, err)
	assert.Equal(t, sampleText, string(decoded))
}

func TestDecodeCommand_Errors(t *testing.T) {
	dir := isolate(t)

	_, err := runCLI(t, "decode", filepath.Join(dir, "missing.nav"), filepath.Join(dir, "out.txt"))
	assert.ErrorIs(t, err, codec.ErrMissingFile)

	_, err = runCLI(t, "decode", "only-one-arg")
	assert.Error(t, err)

	_, err = runCLI(t, "decode", "--encoding", "no-such-charset", "a.nav", "b.txt")
	assert.ErrorIs(t, err, codec.ErrInvalidConfig)

	_, err = runCLI(t, "decode", "--steps", "0", "a.nav", "b.txt")
	assert.ErrorIs(t, err, codec.ErrInvalidConfig)
}

func TestAutoCommand(t *testing.T) {
	dir := isolate(t)
	work := filepath.Join(dir, "work")
	require.NoError(t, os.MkdirAll(work, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(work, navfile.EncodeInputName), []byte(sampleText), 0644))

	out, err := runCLI(t, "auto", "-d", work)
	require.NoError(t, err, out)

	assert.FileExists(t, filepath.Join(work, navfile.EncodeOutputName))
	assert.NoFileExists(t, filepath.Join(work, navfile.DecodeOutputName))
}

func TestAutoCommand_NothingFound(t *testing.T) {
	dir := isolate(t)

	out, err := runCLI(t, "auto", "--directory", dir)

	require.NoError(t, err)
	assert.Contains(t, out, "No files found for auto-processing")
}

func TestHistoryCommand(t *testing.T) {
	dir := isolate(t)
	journalDir := filepath.Join(dir, "journal")
	txt := filepath.Join(dir, "route.txt")
	require.NoError(t, os.WriteFile(txt, []byte(sampleText), 0644))

	_, err := runCLI(t, "encode", "--journal-dir", journalDir, txt, filepath.Join(dir, "route.nav"))
	require.NoError(t, err)
	_, err = runCLI(t, "decode", "--journal-dir", journalDir, filepath.Join(dir, "nope.nav"), filepath.Join(dir, "x.txt"))
	require.Error(t, err)

	out, err := runCLI(t, "history", "--journal-dir", journalDir, "--json", "-v=false")
	require.NoError(t, err)

	start := strings.Index(out, "[")
	require.GreaterOrEqual(t, start, 0, out)
	var runs []journal.Run
	require.NoError(t, json.Unmarshal([]byte(out[start:]), &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, journal.OperationDecode, runs[0].Operation)
	assert.Equal(t, journal.StatusError, runs[0].Status)
	assert.Equal(t, journal.OperationEncode, runs[1].Operation)
	assert.Equal(t, journal.StatusSuccess, runs[1].Status)

	out, err = runCLI(t, "history", "--journal-dir", journalDir, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "OPERATION")
	assert.Contains(t, out, runs[0].ID.String())
	assert.NotContains(t, out, runs[1].ID.String())
}

func TestHistoryCommand_JournalDisabled(t *testing.T) {
	isolate(t)

	_, err := runCLI(t, "history")

	assert.ErrorIs(t, err, errJournalDisabled)
}

func TestConfigCommands(t *testing.T) {
	dir := isolate(t)
	configPath := filepath.Join(dir, "navcodec.yaml")

	out, err := runCLI(t, "config", "init", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration created at")

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Server.APIKey)

	_, err = runCLI(t, "config", "init", "--config", configPath)
	assert.ErrorContains(t, err, "already exists")

	_, err = runCLI(t, "config", "init", "--config", configPath, "--force")
	assert.NoError(t, err)

	out, err = runCLI(t, "config", "show", "--config", configPath, "-k", "0x02")
	require.NoError(t, err)
	assert.Contains(t, out, "xor_key: 2")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, cfg.Server.APIKey)
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	dir := isolate(t)
	configPath := filepath.Join(dir, "navcodec.yaml")

	cfg := config.DefaultConfig()
	cfg.Codec.XORKey = 0
	require.NoError(t, config.SaveConfig(cfg, configPath))

	txt := filepath.Join(dir, "plain.txt")
	nav := filepath.Join(dir, "plain.nav")
	require.NoError(t, os.WriteFile(txt, []byte(sampleText), 0644))

	_, err := runCLI(t, "encode", "--config", configPath, txt, nav)
	require.NoError(t, err)

	encoded, err := os.ReadFile(nav)
	require.NoError(t, err)
	assert.Equal(t, sampleText, string(encoded), "a zero key leaves content unchanged")
}

func TestMissingExplicitConfig(t *testing.T) {
	dir := isolate(t)

	_, err := runCLI(t, "auto", "--config", filepath.Join(dir, "absent.yaml"))

	assert.ErrorContains(t, err, "config file does not exist")
}

type recordingStarter struct {
	config api.ServerConfig
	runs   api.RunStore
}

func (s *recordingStarter) StartServer(_ context.Context, cfg api.ServerConfig, runs api.RunStore, _ *logger.Logger) error {
	s.config = cfg
	s.runs = runs
	return nil
}

type recordingFactory struct {
	starter *recordingStarter
}

func (f recordingFactory) CreateServerStarter() api.ServerStarter { return f.starter }

func TestServeCommand(t *testing.T) {
	isolate(t)
	starter := &recordingStarter{}
	c := di.NewContainer()
	c.SetServerFactory(recordingFactory{starter: starter})
	SetContainer(c)
	defer SetContainer(nil)

	_, err := runCLI(t, "serve", "--port", "9999", "--api-key", "secret", "-k", "0x10")
	require.NoError(t, err)

	assert.Equal(t, 9999, starter.config.Port)
	assert.Equal(t, "127.0.0.1", starter.config.Bind)
	assert.Equal(t, "secret", starter.config.APIKey)
	assert.Equal(t, 0x10, starter.config.Codec.XORKey)
	assert.Nil(t, starter.runs)
}

func TestServeCommand_WithJournal(t *testing.T) {
	dir := isolate(t)
	starter := &recordingStarter{}
	c := di.NewContainer()
	c.SetServerFactory(recordingFactory{starter: starter})
	SetContainer(c)
	defer SetContainer(nil)

	_, err := runCLI(t, "serve", "--journal-dir", filepath.Join(dir, "journal"))
	require.NoError(t, err)

	assert.NotNil(t, starter.runs)
	assert.Equal(t, config.DefaultConfig().Server.Port, starter.config.Port)
}
