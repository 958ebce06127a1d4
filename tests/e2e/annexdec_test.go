// Package e2e contains end-to-end tests for the annexdec CLI.
// This package has no CGO dependencies so it can run with pre-built binaries.
package e2e

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
)

const (
	testWidth  = 64
	testHeight = 48
	testFrames = 5
)

// getBinaryName returns the test binary name with platform-specific extension
func getBinaryName() string {
	if runtime.GOOS == "windows" {
		return "annexdec-test.exe"
	}
	return "annexdec-test"
}

// getBinaryPath returns the path to execute the test binary
// If ANNEXDEC_BINARY env var is set, use that instead (for CI with pre-built binaries)
func getBinaryPath(t *testing.T) string {
	if path := os.Getenv("ANNEXDEC_BINARY"); path != "" {
		return path
	}
	return filepath.Join(getProjectRoot(t), getBinaryName())
}

// prepareBinary skips unless E2E tests are enabled and builds the CLI when no
// pre-built binary is provided.
func prepareBinary(t *testing.T) string {
	t.Helper()
	if os.Getenv("ANNEXDEC_E2E") != "1" {
		t.Skip("Skipping E2E test (set ANNEXDEC_E2E=1 to run)")
	}

	if os.Getenv("ANNEXDEC_BINARY") == "" {
		buildCmd := exec.Command("go", "build", "-o", getBinaryName(), "./cmd/annexdec")
		buildCmd.Dir = getProjectRoot(t)
		if out, err := buildCmd.CombinedOutput(); err != nil {
			t.Fatalf("Failed to build CLI: %v\n%s", err, out)
		}
		t.Cleanup(func() { os.Remove(filepath.Join(getProjectRoot(t), getBinaryName())) })
	}
	return getBinaryPath(t)
}

// writeTestStream encodes a short Annex-B stream with ffmpeg.
func writeTestStream(t *testing.T) string {
	t.Helper()
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not available")
	}

	path := filepath.Join(t.TempDir(), "input.h264")
	cmd := exec.Command(ffmpeg,
		"-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=size=64x48:rate=10",
		"-frames:v", strconv.Itoa(testFrames),
		"-c:v", "libx264", "-bf", "0", "-pix_fmt", "yuv420p",
		"-y", path,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("cannot encode a test stream: %v\n%s", err, out)
	}
	return path
}

// TestVersionCommand tests the version flag
func TestVersionCommand(t *testing.T) {
	bin := prepareBinary(t)

	// urfave/cli uses --version flag instead of version subcommand
	out, err := exec.Command(bin, "--version").CombinedOutput()
	if err != nil {
		t.Fatalf("Version command failed: %v\n%s", err, out)
	}
	if !strings.Contains(string(out), "annexdec version") {
		t.Errorf("Unexpected version output: %s", out)
	}
}

// TestScanCommand lists the units of a stream as JSON
func TestScanCommand(t *testing.T) {
	bin := prepareBinary(t)
	input := writeTestStream(t)

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(bin, "scan", "-Q", "--json", "-i", input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Scan command failed: %v\nstderr: %s", err, stderr.String())
	}

	var result struct {
		Units  []json.RawMessage `json:"units"`
		Counts map[string]int    `json:"counts"`
		Ready  bool              `json:"ready"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse scan output: %v\n%s", err, stdout.String())
	}
	if !result.Ready {
		t.Error("Expected parameter sets to be found")
	}
	if result.Counts["idr"] < 1 {
		t.Errorf("Expected at least one IDR unit, got counts %v", result.Counts)
	}
}

// TestDecodeCommand decodes a stream to raw NV12
func TestDecodeCommand(t *testing.T) {
	bin := prepareBinary(t)
	input := writeTestStream(t)
	dir := t.TempDir()
	output := filepath.Join(dir, "out.nv12")
	summary := filepath.Join(dir, "summary.md")

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(bin, "decode",
		"-i", input,
		"-o", output,
		"--backend", "ffmpeg",
		"--trim-padding",
		"--summary", summary,
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Decode command failed: %v\nstdout: %s\nstderr: %s", err, stdout.String(), stderr.String())
	}

	info, err := os.Stat(output)
	if err != nil {
		t.Fatalf("Output file not created: %v", err)
	}
	frame := int64(testWidth*testHeight + testWidth*testHeight/2)
	if info.Size() != frame*testFrames {
		t.Errorf("Expected %d bytes, got %d", frame*testFrames, info.Size())
	}

	data, err := os.ReadFile(summary)
	if err != nil {
		t.Fatalf("Summary not written: %v", err)
	}
	if !strings.Contains(string(data), "# Decode Summary") {
		t.Errorf("Unexpected summary:\n%s", data)
	}
}

// TestDecodeWithDebugOutput checks the debug directory contents
func TestDecodeWithDebugOutput(t *testing.T) {
	bin := prepareBinary(t)
	input := writeTestStream(t)
	dir := t.TempDir()
	debugDir := filepath.Join(dir, "debug")

	cmd := exec.Command(bin, "decode",
		"-i", input,
		"-o", filepath.Join(dir, "out.nv12"),
		"--backend", "ffmpeg",
		"--debug", "--debug-dir", debugDir,
		"--preview-every", "2",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Decode command failed: %v\n%s", err, out)
	}

	for _, name := range []string{"sps.bin", "pps.bin", "avcC.bin", "units.json", "previews/frame-0000.png"} {
		if _, err := os.Stat(filepath.Join(debugDir, name)); err != nil {
			t.Errorf("Expected %s in debug output: %v", name, err)
		}
	}
}

// TestDecodeMissingInput expects a non-zero exit
func TestDecodeMissingInput(t *testing.T) {
	bin := prepareBinary(t)
	dir := t.TempDir()

	cmd := exec.Command(bin, "decode", "-Q",
		"-i", filepath.Join(dir, "missing.h264"),
		"-o", filepath.Join(dir, "out.nv12"),
	)
	if err := cmd.Run(); err == nil {
		t.Error("Expected decode of a missing file to fail")
	}
}

func getProjectRoot(t *testing.T) string {
	// Start from current working directory and find go.mod
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("Could not find project root (go.mod)")
		}
		dir = parent
	}
}
