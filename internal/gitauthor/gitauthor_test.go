package gitauthor

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xabinapal/gssh/internal/runner"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *Author
	}{
		{
			name:    "empty",
			content: "",
			want:    nil,
		},
		{
			name:    "only blank lines",
			content: "\n   \n\t\n",
			want:    nil,
		},
		{
			name:    "name and email on one line",
			content: "Jane Doe <jane@example.com>\n",
			want:    &Author{Name: "Jane Doe", Email: "jane@example.com"},
		},
		{
			name:    "no space before bracket",
			content: "Jane<jane@example.com>",
			want:    &Author{Name: "Jane", Email: "jane@example.com"},
		},
		{
			name:    "padded email",
			content: "  Jane Doe   < jane@example.com >  ",
			want:    &Author{Name: "Jane Doe", Email: "jane@example.com"},
		},
		{
			name:    "bare name",
			content: "Jane Doe",
			want:    &Author{Name: "Jane Doe"},
		},
		{
			name:    "email without name is a bare name",
			content: "<jane@example.com>",
			want:    &Author{Name: "<jane@example.com>"},
		},
		{
			name:    "two lines",
			content: "Jane Doe\njane@example.com\n",
			want:    &Author{Name: "Jane Doe", Email: "jane@example.com"},
		},
		{
			name:    "two lines with blanks",
			content: "\n\nJane Doe\n\n\njane@example.com\n\n",
			want:    &Author{Name: "Jane Doe", Email: "jane@example.com"},
		},
		{
			name:    "extra lines ignored",
			content: "Jane Doe\njane@example.com\nsomething else\n",
			want:    &Author{Name: "Jane Doe", Email: "jane@example.com"},
		},
		{
			name:    "crlf",
			content: "Jane Doe\r\njane@example.com\r\n",
			want:    &Author{Name: "Jane Doe", Email: "jane@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.content))
		})
	}
}

func TestAuthorStringRoundTrip(t *testing.T) {
	a := &Author{Name: "Jane Doe", Email: "jane@example.com"}
	assert.Equal(t, "Jane Doe <jane@example.com>", a.String())
	assert.Equal(t, a, Parse(a.String()))
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing", func(t *testing.T) {
		a, err := ParseFile(filepath.Join(dir, "missing.txt"))
		require.NoError(t, err)
		assert.Nil(t, a)
	})

	t.Run("blank", func(t *testing.T) {
		path := filepath.Join(dir, "blank.txt")
		require.NoError(t, os.WriteFile(path, []byte("\n \n"), 0600))
		a, err := ParseFile(path)
		require.NoError(t, err)
		assert.Nil(t, a)
	})

	t.Run("written by WriteFile", func(t *testing.T) {
		path := filepath.Join(dir, FileName)
		want := &Author{Name: "Jane Doe", Email: "jane@example.com"}
		require.NoError(t, want.WriteFile(path))

		got, err := ParseFile(path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("read error", func(t *testing.T) {
		_, err := ParseFile(dir)
		assert.Error(t, err)
	})
}

type setCall struct {
	scope   Scope
	workDir string
	key     string
	value   string
}

type fakeConfigurer struct {
	calls []setCall
	err   error
}

func (f *fakeConfigurer) SetConfig(ctx context.Context, scope Scope, workDir, key, value string) error {
	f.calls = append(f.calls, setCall{scope, workDir, key, value})
	return f.err
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("global writes email then name", func(t *testing.T) {
		cfg := &fakeConfigurer{}
		a := &Author{Name: "Jane Doe", Email: "jane@example.com"}
		require.NoError(t, a.Apply(ctx, cfg, ScopeGlobal, t.TempDir()))

		require.Len(t, cfg.calls, 2)
		assert.Equal(t, "user.email", cfg.calls[0].key)
		assert.Equal(t, "jane@example.com", cfg.calls[0].value)
		assert.Equal(t, "user.name", cfg.calls[1].key)
		assert.Equal(t, "Jane Doe", cfg.calls[1].value)
		assert.Equal(t, ScopeGlobal, cfg.calls[0].scope)
	})

	t.Run("empty email skipped", func(t *testing.T) {
		cfg := &fakeConfigurer{}
		a := &Author{Name: "Jane Doe"}
		require.NoError(t, a.Apply(ctx, cfg, ScopeGlobal, ""))

		require.Len(t, cfg.calls, 1)
		assert.Equal(t, "user.name", cfg.calls[0].key)
	})

	t.Run("local outside repository", func(t *testing.T) {
		cfg := &fakeConfigurer{}
		a := &Author{Name: "Jane Doe", Email: "jane@example.com"}
		err := a.Apply(ctx, cfg, ScopeLocal, t.TempDir())

		assert.True(t, errors.Is(err, ErrNotInRepository), "got %v", err)
		assert.Empty(t, cfg.calls)
	})

	t.Run("local inside repository", func(t *testing.T) {
		repo := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(repo, ".git"), 0700))

		cfg := &fakeConfigurer{}
		a := &Author{Name: "Jane Doe", Email: "jane@example.com"}
		require.NoError(t, a.Apply(ctx, cfg, ScopeLocal, repo))

		require.Len(t, cfg.calls, 2)
		assert.Equal(t, ScopeLocal, cfg.calls[0].scope)
		assert.Equal(t, repo, cfg.calls[0].workDir)
	})

	t.Run("worktree .git file counts", func(t *testing.T) {
		repo := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(repo, ".git"), []byte("gitdir: /elsewhere\n"), 0600))

		cfg := &fakeConfigurer{}
		a := &Author{Name: "Jane Doe"}
		assert.NoError(t, a.Apply(ctx, cfg, ScopeLocal, repo))
	})

	t.Run("configurer error stops", func(t *testing.T) {
		cfg := &fakeConfigurer{err: errors.New("locked")}
		a := &Author{Name: "Jane Doe", Email: "jane@example.com"}
		err := a.Apply(ctx, cfg, ScopeGlobal, "")

		assert.Error(t, err)
		assert.Len(t, cfg.calls, 1)
	})
}

func TestScope(t *testing.T) {
	assert.Equal(t, "--global", ScopeGlobal.Flag())
	assert.Equal(t, "--local", ScopeLocal.Flag())
	assert.Equal(t, "GLOBAL", ScopeGlobal.String())
	assert.Equal(t, "LOCAL", ScopeLocal.String())
}

func TestGitCLI(t *testing.T) {
	ctx := context.Background()

	t.Run("global", func(t *testing.T) {
		r := runner.NewMockRunner()
		g := NewGitCLI("git", r)

		require.NoError(t, g.SetConfig(ctx, ScopeGlobal, "/repo", "user.name", "Jane Doe"))

		calls := r.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "git", calls[0].Name)
		assert.Equal(t, []string{"config", "--global", "user.name", "Jane Doe"}, calls[0].Args)
	})

	t.Run("local runs in work dir", func(t *testing.T) {
		r := runner.NewMockRunner()
		g := NewGitCLI("/usr/bin/git", r)

		require.NoError(t, g.SetConfig(ctx, ScopeLocal, "/repo", "user.email", "jane@example.com"))

		calls := r.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "/usr/bin/git", calls[0].Name)
		assert.Equal(t, []string{"-C", "/repo", "config", "--local", "user.email", "jane@example.com"}, calls[0].Args)
	})

	t.Run("git missing", func(t *testing.T) {
		r := runner.NewMockRunner()
		r.SetMissing("git")
		g := NewGitCLI("git", r)

		err := g.SetConfig(ctx, ScopeGlobal, "", "user.name", "Jane")
		assert.True(t, errors.Is(err, runner.ErrBinaryNotFound))
	})

	t.Run("git fails", func(t *testing.T) {
		r := runner.NewMockRunner()
		r.SetHandler(func(call runner.Call, stdout, stderr io.Writer) error {
			_, _ = io.WriteString(stderr, "error: could not lock config file")
			return errors.New("exit status 255")
		})
		g := NewGitCLI("git", r)

		err := g.SetConfig(ctx, ScopeGlobal, "", "user.name", "Jane")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not lock config file")
	})
}

func TestWriteFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permissions not enforced on Windows")
	}
	path := filepath.Join(t.TempDir(), FileName)
	a := &Author{Name: "Jane", Email: "jane@example.com"}
	require.NoError(t, a.WriteFile(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Jane <jane@example.com>", string(data))
}
