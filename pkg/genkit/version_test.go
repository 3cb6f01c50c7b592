package genkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionInfo(t *testing.T) {
	assert.Equal(t, "genkit "+Version+" (store schema "+SchemaVersion+")", VersionInfo())
}

func TestFullVersionInfo(t *testing.T) {
	saved := BuildInfo
	t.Cleanup(func() { BuildInfo = saved })

	info := FullVersionInfo()
	assert.Contains(t, info, "genkit "+Version+"\n")
	assert.NotContains(t, info, "Git Commit")

	SetBuildInfo("abc123", "2026-01-02", "")
	info = FullVersionInfo()
	assert.Contains(t, info, "Git Commit: abc123\n")
	assert.Contains(t, info, "Build Date: 2026-01-02\n")
	assert.Contains(t, info, "Go Version: "+saved.GoVersion)
}
