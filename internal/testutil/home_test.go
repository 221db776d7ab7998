// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"runtime"
	"testing"
)

func homeVar() string {
	if runtime.GOOS == "windows" {
		return "USERPROFILE"
	}
	return "HOME"
}

func TestSetHomeDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", "/somewhere/else")

	SetHomeDir(t, dir)

	if got := os.Getenv(homeVar()); got != dir {
		t.Errorf("%s = %q, want %q", homeVar(), got, dir)
	}
	if got := os.Getenv("XDG_CONFIG_HOME"); got != "" {
		t.Errorf("XDG_CONFIG_HOME = %q, want it cleared", got)
	}
	if runtime.GOOS != "windows" {
		home, err := os.UserHomeDir()
		if err != nil || home != dir {
			t.Errorf("os.UserHomeDir() = (%q, %v), want %q", home, err, dir)
		}
	}
}

func TestSetHomeDir_RestoredAfterSubtest(t *testing.T) {
	original, had := os.LookupEnv(homeVar())

	t.Run("override", func(t *testing.T) {
		SetHomeDir(t, t.TempDir())
	})

	got, has := os.LookupEnv(homeVar())
	if got != original || has != had {
		t.Errorf("%s = (%q, %v) after subtest, want (%q, %v)", homeVar(), got, has, original, had)
	}
}
