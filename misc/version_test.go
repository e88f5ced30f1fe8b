package misc

import "testing"

func TestIdentity(t *testing.T) {
	if GetAppName() != "bookr" {
		t.Errorf("GetAppName() = %q, want bookr", GetAppName())
	}
	if GetVersion() == "" {
		t.Error("GetVersion() returned empty string")
	}
	if GetGitHash() == "" {
		t.Error("GetGitHash() returned empty string")
	}
}
