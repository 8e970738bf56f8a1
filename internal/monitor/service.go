package monitor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// ServiceLabel names the installed background service
const ServiceLabel = "com.tuner.watch"

const plistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>{{.Label}}</string>
	<key>ProgramArguments</key>
	<array>
		<string>{{.BinaryPath}}</string>
{{- range .Args}}
		<string>{{.}}</string>
{{- end}}
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<true/>
	<key>StandardOutPath</key>
	<string>{{.LogPath}}/tuner.log</string>
	<key>StandardErrorPath</key>
	<string>{{.LogPath}}/tuner.err</string>
	<key>WorkingDirectory</key>
	<string>{{.WorkingDirectory}}</string>
	<key>EnvironmentVariables</key>
	<dict>
		<key>PATH</key>
		<string>/usr/local/bin:/usr/bin:/bin:/usr/sbin:/sbin</string>
	</dict>
</dict>
</plist>
`

const unitTemplate = `[Unit]
Description=tuner health monitor
After=network-online.target

[Service]
ExecStart={{.BinaryPath}}{{range .Args}} {{.}}{{end}}
WorkingDirectory={{.WorkingDirectory}}
Restart=on-failure
RestartSec=30
StandardOutput=append:{{.LogPath}}/tuner.log
StandardError=append:{{.LogPath}}/tuner.err

[Install]
WantedBy=default.target
`

// ServiceConfig holds the values substituted into a service definition
type ServiceConfig struct {
	Label            string
	BinaryPath       string
	Args             []string // Arguments after the binary, e.g. watch --sync 1h
	LogPath          string
	WorkingDirectory string
}

// GeneratePlist generates a launchd plist
func GeneratePlist(config ServiceConfig) (string, error) {
	return generate("plist", plistTemplate, config)
}

// GenerateUnit generates a systemd user unit
func GenerateUnit(config ServiceConfig) (string, error) {
	return generate("unit", unitTemplate, config)
}

func generate(name, text string, config ServiceConfig) (string, error) {
	if config.Label == "" {
		config.Label = ServiceLabel
	}

	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, config); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}

	return buf.String(), nil
}

// ServicePath returns where the service definition is installed for goos
func ServicePath(goos string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "LaunchAgents", ServiceLabel+".plist"), nil
	case "linux":
		return filepath.Join(home, ".config", "systemd", "user", "tuner-watch.service"), nil
	default:
		return "", fmt.Errorf("background service not supported on %s", goos)
	}
}

// DefaultLogPath returns the default path for service logs
func DefaultLogPath(dataDir string) string {
	return filepath.Join(dataDir, "logs")
}
