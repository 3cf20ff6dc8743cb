package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	return func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
	}
}

func TestGetVersionInfoDefaults(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "dev", "", ""

	info := GetVersionInfo()
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
	if info.GoVersion == "" || !strings.Contains(info.Platform, "/") {
		t.Errorf("expected go version and platform, got %+v", info)
	}
}

func TestGetVersionInfoLinkerValues(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "1.0.0", "abc1234", "2024-01-15T10:30:00Z"

	info := GetVersionInfo()
	if !info.IsRelease {
		t.Error("1.0.0 should be a release")
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected 'abc1234', got %q", info.GitCommit)
	}
	if info.BuildDate.Year() != 2024 {
		t.Errorf("expected build date in 2024, got %v", info.BuildDate)
	}
}

func TestApplyBuildSettings(t *testing.T) {
	info := &Info{Version: "dev"}
	applyBuildSettings(info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.modified", Value: "true"},
		{Key: "vcs.time", Value: "2025-03-01T08:00:00Z"},
	})
	if info.GitCommit != "0123456" {
		t.Errorf("expected truncated commit, got %q", info.GitCommit)
	}
	if !info.IsDirty {
		t.Error("expected dirty flag")
	}
	if info.BuildTime != "2025-03-01T08:00:00Z" {
		t.Errorf("expected vcs time, got %q", info.BuildTime)
	}
	if got := shortVersion(info); got != "dev-0123456-dirty" {
		t.Errorf("shortVersion = %q", got)
	}
}

func TestApplyBuildSettingsKeepsLinkerCommit(t *testing.T) {
	info := &Info{GitCommit: "abc1234", BuildTime: "x"}
	applyBuildSettings(info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "ffffffffff"},
		{Key: "vcs.time", Value: "2025-03-01T08:00:00Z"},
	})
	if info.GitCommit != "abc1234" || info.BuildTime != "x" {
		t.Errorf("linker values should win, got %+v", info)
	}
}

func TestGetFullVersion(t *testing.T) {
	defer saveAndRestore()()
	Version, GitCommit, BuildTime = "2.0.0", "def5678", "2024-06-01T12:00:00Z"

	full := GetFullVersion()
	for _, want := range []string{"gstclient 2.0.0-def5678", "built 2024-06-01T12:00:00Z"} {
		if !strings.Contains(full, want) {
			t.Errorf("GetFullVersion() = %q, missing %q", full, want)
		}
	}
}

func TestUserAgent(t *testing.T) {
	defer saveAndRestore()()
	Version = "0.3.1"
	if got := UserAgent(); got != "gstclient/0.3.1" {
		t.Errorf("UserAgent() = %q", got)
	}
}
