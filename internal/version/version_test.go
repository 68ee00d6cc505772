package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()

	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.Commit)
	assert.NotEmpty(t, info.Date)
}

func TestFill(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	t.Run("defaults are replaced", func(t *testing.T) {
		info := Info{Version: "dev", Commit: "unknown", Date: "unknown"}
		info.fill(bi)
		assert.Equal(t, "v1.4.0", info.Version)
		assert.Equal(t, "0123456789ab", info.Commit)
		assert.Equal(t, "2026-01-02T03:04:05Z", info.Date)
	})

	t.Run("ldflags win", func(t *testing.T) {
		info := Info{Version: "v2.0.0", Commit: "abc123", Date: "2026-05-01"}
		info.fill(bi)
		assert.Equal(t, "v2.0.0", info.Version)
		assert.Equal(t, "abc123", info.Commit)
		assert.Equal(t, "2026-05-01", info.Date)
	})

	t.Run("devel module version is ignored", func(t *testing.T) {
		info := Info{Version: "dev", Commit: "unknown", Date: "unknown"}
		info.fill(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
		assert.Equal(t, "dev", info.Version)
		assert.Equal(t, "unknown", info.Commit)
	})
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "v1.0.0", Commit: "abc", Date: "today", GoVersion: "go1.25.5", Platform: "linux/amd64"}
	assert.Equal(t, "gssh v1.0.0 (commit abc, built today, go1.25.5, linux/amd64)", info.String())
}
