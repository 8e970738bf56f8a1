package monitor

import (
	"strings"
	"testing"
)

func TestGeneratePlist(t *testing.T) {
	plist, err := GeneratePlist(ServiceConfig{
		BinaryPath:       "/usr/local/bin/tuner",
		Args:             []string{"watch", "--sync", "1h"},
		LogPath:          "/tmp/logs",
		WorkingDirectory: "/Users/me",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"<string>com.tuner.watch</string>",
		"<string>/usr/local/bin/tuner</string>\n\t\t<string>watch</string>\n\t\t<string>--sync</string>\n\t\t<string>1h</string>\n\t</array>",
		"<string>/tmp/logs/tuner.log</string>",
		"<string>/Users/me</string>",
	} {
		if !strings.Contains(plist, want) {
			t.Errorf("expected plist to contain %q:\n%s", want, plist)
		}
	}
}

func TestGenerateUnit(t *testing.T) {
	unit, err := GenerateUnit(ServiceConfig{
		BinaryPath:       "/home/me/bin/tuner",
		Args:             []string{"watch"},
		LogPath:          "/home/me/.local/share/tuner/logs",
		WorkingDirectory: "/home/me",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"ExecStart=/home/me/bin/tuner watch\n",
		"StandardOutput=append:/home/me/.local/share/tuner/logs/tuner.log",
		"WantedBy=default.target",
	} {
		if !strings.Contains(unit, want) {
			t.Errorf("expected unit to contain %q:\n%s", want, unit)
		}
	}
}

func TestServicePath(t *testing.T) {
	t.Setenv("HOME", "/home/me")

	tests := []struct {
		goos        string
		want        string
		errContains string
	}{
		{goos: "darwin", want: "/home/me/Library/LaunchAgents/com.tuner.watch.plist"},
		{goos: "linux", want: "/home/me/.config/systemd/user/tuner-watch.service"},
		{goos: "windows", errContains: "not supported"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			got, err := ServicePath(tt.goos)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("expected error containing %q, got %v", tt.errContains, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
