package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattjoyce/paperjet/internal/config"
)

func captureOutputWithExitCode(t *testing.T, run func() int) (int, string, string) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe stdout failed: %v", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe stderr failed: %v", err)
	}

	os.Stdout = stdoutW
	os.Stderr = stderrW

	code := run()

	_ = stdoutW.Close()
	_ = stderrW.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	stdoutBytes, _ := io.ReadAll(stdoutR)
	stderrBytes, _ := io.ReadAll(stderrR)

	_ = stdoutR.Close()
	_ = stderrR.Close()

	return code, string(stdoutBytes), string(stderrBytes)
}

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paperjet.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCheckValidConfig(t *testing.T) {
	configPath := writeTestConfig(t, `
printer:
  transport: console
providers:
  acme:
    signing_secret: s3cret
`)

	code, stdout, stderr := captureOutputWithExitCode(t, func() int {
		return runCheck([]string{"--config", configPath})
	})
	if code != 0 {
		t.Fatalf("runCheck() code = %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "Configuration OK") {
		t.Errorf("stdout missing OK line: %s", stdout)
	}
	if !strings.Contains(stdout, "Fingerprint:") {
		t.Errorf("stdout missing fingerprint line: %s", stdout)
	}
}

func TestRunCheckMissingSecret(t *testing.T) {
	configPath := writeTestConfig(t, `
providers:
  acme: {}
`)

	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runCheck([]string{"--config", configPath})
	})
	if code == 0 {
		t.Fatal("runCheck() should fail for an enabled provider without a secret")
	}
	if !strings.Contains(stderr, "signing_secret") {
		t.Errorf("stderr should name the missing field: %s", stderr)
	}
}

func TestRunCheckUnknownProvider(t *testing.T) {
	configPath := writeTestConfig(t, `
providers:
  jira:
    signing_secret: s
`)

	code, _, stderr := captureOutputWithExitCode(t, func() int {
		return runCheck([]string{"--config", configPath})
	})
	if code == 0 {
		t.Fatal("runCheck() should fail for a provider without an adapter")
	}
	if !strings.Contains(stderr, "jira") {
		t.Errorf("stderr should name the provider: %s", stderr)
	}
}

func TestRunCheckMissingFile(t *testing.T) {
	code, _, _ := captureOutputWithExitCode(t, func() int {
		return runCheck([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")})
	})
	if code == 0 {
		t.Fatal("runCheck() should fail for a missing config file")
	}
}

func configWith(transport, address string) *config.Config {
	cfg := &config.Config{}
	cfg.Printer.Transport = transport
	cfg.Printer.Address = address
	return cfg
}

func TestBuildTransport(t *testing.T) {
	transport, err := buildTransport(configWith("console", ""))
	if err != nil {
		t.Fatalf("buildTransport(console): %v", err)
	}
	if transport.Device() != "console" {
		t.Errorf("Device() = %q", transport.Device())
	}

	transport, err = buildTransport(configWith("network", "10.0.0.5:9100"))
	if err != nil {
		t.Fatalf("buildTransport(network): %v", err)
	}
	if transport.Device() != "tcp 10.0.0.5:9100" {
		t.Errorf("Device() = %q", transport.Device())
	}

	if _, err := buildTransport(configWith("carrier-pigeon", "")); err == nil {
		t.Error("buildTransport should reject unknown transports")
	}
}
