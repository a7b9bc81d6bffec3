package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/assetsync/internal/bridge"
	"github.com/bamsammich/assetsync/internal/config"
	"github.com/bamsammich/assetsync/internal/dialog"
	"github.com/bamsammich/assetsync/internal/engine"
	"github.com/bamsammich/assetsync/internal/stats"
)

func ptr[T any](v T) *T { return &v }

func TestApplyConfigDefaults_FlagsWin(t *testing.T) {
	var opts options
	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&opts.policy, "policy", "size", "")
	cmd.Flags().StringVar(&opts.root, "root", "", "")
	cmd.Flags().StringVar(&opts.manifest, "manifest", "index.txt", "")
	cmd.Flags().StringVar(&opts.bufferSize, "buffer-size", "", "")
	cmd.Flags().StringVar(&opts.bwLimit, "bwlimit", "", "")
	cmd.Flags().BoolVar(&opts.tuiFlag, "tui", false, "")
	cmd.Flags().BoolVar(&opts.quiet, "quiet", false, "")
	require.NoError(t, cmd.Flags().Parse([]string{"--policy", "size"}))

	applyConfigDefaults(cmd, config.DefaultsConfig{
		Policy:  ptr("digest"),
		Root:    ptr("Minetest"),
		BWLimit: ptr("10MB"),
		TUI:     ptr(true),
	}, &opts)

	assert.Equal(t, "size", opts.policy)
	assert.Equal(t, "Minetest", opts.root)
	assert.Equal(t, "10MB", opts.bwLimit)
	assert.Equal(t, "index.txt", opts.manifest)
	assert.True(t, opts.tuiFlag)
	assert.False(t, opts.quiet)
}

func TestParseSize(t *testing.T) {
	n, err := parseSize("--bwlimit", "")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	n, err = parseSize("--bwlimit", "1MiB")
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<20), n)

	n, err = parseSize("--bwlimit", "10MB")
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000), n)

	_, err = parseSize("--bwlimit", "fast")
	require.ErrorContains(t, err, "--bwlimit")
}

func TestExitFor(t *testing.T) {
	assert.NoError(t, exitFor(engine.Result{}))

	tests := []struct {
		name string
		res  engine.Result
		code int
	}{
		{"partial", engine.Result{Failures: []error{errors.New("x")}, Stats: stats.Snapshot{FilesCopied: 2}}, 1},
		{"total", engine.Result{Failures: []error{errors.New("x")}}, 2},
		{"cancelled", engine.Result{Err: context.Canceled}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var exitErr *exitError
			require.ErrorAs(t, exitFor(tt.res), &exitErr)
			assert.Equal(t, tt.code, exitErr.code)
		})
	}
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv("ASSETSYNC_ACCESS_KEY", "")
	t.Setenv("ASSETSYNC_SECRET_KEY", "own-secret")
	t.Setenv("AWS_ACCESS_KEY_ID", "aws-key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "aws-secret")

	creds := credentialsFromEnv()
	assert.Equal(t, "aws-key", creds.AccessKey)
	assert.Equal(t, "own-secret", creds.SecretKey)
}

func TestParseMode(t *testing.T) {
	m, err := parseMode("password")
	require.NoError(t, err)
	assert.Equal(t, dialog.Password, m)

	m, err = parseMode("multi")
	require.NoError(t, err)
	assert.Equal(t, dialog.MultiLine, m)

	_, err = parseMode("secret")
	require.Error(t, err)
}

type fixedPrompter struct{ res dialog.Result }

func (p fixedPrompter) Prompt(context.Context, dialog.Request) (dialog.Result, error) {
	return p.res, nil
}

func TestPollDialog(t *testing.T) {
	ctx := context.Background()

	b := bridge.New(ctx, bridge.Config{Prompter: fixedPrompter{dialog.Result{Accepted: true, Text: "hello"}}})
	state, text := pollDialog(ctx, b, dialog.Request{})
	assert.Equal(t, bridge.DialogAccepted, state)
	assert.Equal(t, "hello", text)
	assert.Equal(t, bridge.DialogPending, b.DialogState())

	b = bridge.New(ctx, bridge.Config{Prompter: fixedPrompter{}})
	state, text = pollDialog(ctx, b, dialog.Request{})
	assert.Equal(t, bridge.DialogCancelled, state)
	assert.Empty(t, text)
}

func TestCopyAssetsCmd(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "textures", "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.txt"), []byte("textures\ntextures/sub\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "textures", "b.png"), []byte("0123456789"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "textures", "sub", "a.png"), []byte("aaaa"), 0o644))
	dst := t.TempDir()

	var out bytes.Buffer
	cmd := newCopyAssetsCmd()
	cmd.SetArgs([]string{src, dst})
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "1/2 textures/b.png\n2/2 textures/sub/a.png\ncomplete\n", out.String())
	data, err := os.ReadFile(filepath.Join(dst, "textures", "sub", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "aaaa", string(data))

	// A second deployment finds nothing stale.
	out.Reset()
	cmd = newCopyAssetsCmd()
	cmd.SetArgs([]string{src, dst})
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "complete\n", out.String())
}

func TestCopyAssetsCmd_BadPolicy(t *testing.T) {
	cmd := newCopyAssetsCmd()
	cmd.SetArgs([]string{"--policy", "mtime", t.TempDir(), t.TempDir()})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	var exitErr *exitError
	require.ErrorAs(t, cmd.Execute(), &exitErr)
	assert.Equal(t, 2, exitErr.code)
}
