// Package e2e contains end-to-end tests for the framepack CLI.
// This package has no CGO dependencies so it can run with pre-built binaries.
package e2e

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// getBinaryName returns the test binary name with platform-specific extension
func getBinaryName() string {
	if runtime.GOOS == "windows" {
		return "framepack-test.exe"
	}
	return "framepack-test"
}

// getBinaryPath returns the binary to execute.
// If FRAMEPACK_BINARY env var is set, use that instead (for CI with pre-built binaries)
func getBinaryPath(t *testing.T) string {
	if path := os.Getenv("FRAMEPACK_BINARY"); path != "" {
		return path
	}
	return filepath.Join(getProjectRoot(t), getBinaryName())
}

// setup skips unless E2E tests are enabled and builds the CLI when no
// pre-built binary is provided.
func setup(t *testing.T) {
	t.Helper()
	if os.Getenv("FRAMEPACK_E2E") != "1" {
		t.Skip("Skipping E2E test (set FRAMEPACK_E2E=1 to run)")
	}
	if os.Getenv("FRAMEPACK_BINARY") != "" {
		return
	}

	buildCmd := exec.Command("go", "build", "-o", getBinaryName(), "./cmd/framepack")
	buildCmd.Dir = getProjectRoot(t)
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build CLI: %v\n%s", err, out)
	}
	t.Cleanup(func() { os.Remove(filepath.Join(getProjectRoot(t), getBinaryName())) })
}

// testVideo returns the sample video named by FRAMEPACK_E2E_VIDEO.
func testVideo(t *testing.T) string {
	t.Helper()
	path := os.Getenv("FRAMEPACK_E2E_VIDEO")
	if path == "" {
		t.Skip("Skipping: FRAMEPACK_E2E_VIDEO is not set")
	}
	return path
}

// run executes the CLI and returns stdout, stderr and the run error.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command(getBinaryPath(t), args...)
	cmd.Dir = getProjectRoot(t)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// readMetadata decodes video_metadata.bin in dir.
func readMetadata(t *testing.T, dir string) []uint32 {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "video_metadata.bin"))
	if err != nil {
		t.Fatalf("Metadata file not found: %v", err)
	}
	if len(data) < 4 {
		t.Fatalf("Metadata too short: %d bytes", len(data))
	}
	count := binary.LittleEndian.Uint32(data[:4])
	if len(data) != 4+4*int(count) {
		t.Fatalf("Metadata has %d bytes for %d frames", len(data), count)
	}
	sizes := make([]uint32, count)
	for i := range sizes {
		sizes[i] = binary.LittleEndian.Uint32(data[4+4*i:])
	}
	return sizes
}

// verifyArtifact checks that the payload matches the metadata and returns
// both.
func verifyArtifact(t *testing.T, dir string) ([]uint32, []byte) {
	t.Helper()
	sizes := readMetadata(t, dir)
	payload, err := os.ReadFile(filepath.Join(dir, "video_frames.bin"))
	if err != nil {
		t.Fatalf("Payload file not found: %v", err)
	}
	var total int
	for _, s := range sizes {
		total += int(s)
	}
	if total != len(payload) {
		t.Fatalf("Sum of frame lengths %d != payload size %d", total, len(payload))
	}
	return sizes, payload
}

// TestVersionCommand tests the version flag
func TestVersionCommand(t *testing.T) {
	setup(t)

	stdout, stderr, err := run(t, "--version")
	if err != nil {
		t.Fatalf("Version command failed: %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "framepack") {
		t.Errorf("Version output should contain 'framepack': %s", stdout)
	}
}

// TestConvertCommand converts the sample video with a frame cap
func TestConvertCommand(t *testing.T) {
	setup(t)
	video := testVideo(t)
	outDir := t.TempDir()

	// Flags must come before the source argument in urfave/cli
	_, stderr, err := run(t, "convert", "-o", outDir, "-q", "70", "-n", "10", video)
	if err != nil {
		t.Fatalf("Convert command failed: %v\nstderr: %s", err, stderr)
	}

	sizes, payload := verifyArtifact(t, outDir)
	if len(sizes) == 0 || len(sizes) > 10 {
		t.Errorf("Expected 1-10 frames, got %d", len(sizes))
	}
	if len(payload) < 2 || payload[0] != 0xFF || payload[1] != 0xD8 {
		t.Error("First frame is not a JPEG")
	}

	t.Logf("Artifact created: %d frames, %d bytes", len(sizes), len(payload))
}

// TestConvertWithResolution checks that frames are resampled
func TestConvertWithResolution(t *testing.T) {
	setup(t)
	video := testVideo(t)
	outDir := t.TempDir()

	_, stderr, err := run(t, "convert", "-o", outDir, "-r", "160x120", "-n", "3", video)
	if err != nil {
		t.Fatalf("Convert command failed: %v\nstderr: %s", err, stderr)
	}

	sizes, payload := verifyArtifact(t, outDir)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(payload[:sizes[0]]))
	if err != nil {
		t.Fatalf("Failed to decode first frame: %v", err)
	}
	if cfg.Width != 160 || cfg.Height != 120 {
		t.Errorf("Expected 160x120, got %dx%d", cfg.Width, cfg.Height)
	}
}

// TestConvertMalformedResolution checks that a bad resolution only warns
func TestConvertMalformedResolution(t *testing.T) {
	setup(t)
	video := testVideo(t)
	outDir := t.TempDir()

	_, stderr, err := run(t, "convert", "-o", outDir, "-r", "abc", "-n", "2", video)
	if err != nil {
		t.Fatalf("Convert command failed: %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stderr, "abc") {
		t.Errorf("Expected a warning mentioning the resolution, got: %s", stderr)
	}
	verifyArtifact(t, outDir)
}

// TestConvertMissingSource checks the failure exit and that nothing is written
func TestConvertMissingSource(t *testing.T) {
	setup(t)
	outDir := filepath.Join(t.TempDir(), "out")

	_, _, err := run(t, "convert", "-o", outDir, filepath.Join(t.TempDir(), "missing.mp4"))
	if err == nil {
		t.Fatal("Expected non-zero exit for a missing source")
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Errorf("Output directory should not exist: %v", err)
	}
}

// TestConvertWithDebugOutput tests debug output generation
func TestConvertWithDebugOutput(t *testing.T) {
	setup(t)
	video := testVideo(t)
	outDir := t.TempDir()
	debugDir := t.TempDir()

	_, stderr, err := run(t, "convert", "-o", outDir, "-n", "20", "--debug", "--debug-dir", debugDir, video)
	if err != nil {
		t.Fatalf("Convert command failed: %v\nstderr: %s", err, stderr)
	}

	for _, name := range []string{"run.json", "contact-sheet.png", filepath.Join("frames", "frame-0000.jpg")} {
		if _, err := os.Stat(filepath.Join(debugDir, name)); err != nil {
			t.Errorf("Expected debug file %s: %v", name, err)
		}
	}
}

// TestConvertReports tests the summary and metrics outputs
func TestConvertReports(t *testing.T) {
	setup(t)
	video := testVideo(t)
	outDir := t.TempDir()
	summary := filepath.Join(t.TempDir(), "summary.md")
	metrics := filepath.Join(t.TempDir(), "framepack.prom")

	_, stderr, err := run(t, "convert", "-o", outDir, "-n", "5", "--summary", summary, "--metrics-file", metrics, video)
	if err != nil {
		t.Fatalf("Convert command failed: %v\nstderr: %s", err, stderr)
	}

	data, err := os.ReadFile(summary)
	if err != nil {
		t.Fatalf("Summary not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "# ") {
		t.Errorf("Summary should start with a heading: %q", data)
	}

	data, err = os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("Metrics not written: %v", err)
	}
	if !strings.Contains(string(data), "framepack_frames_written_total") {
		t.Errorf("Metrics file missing frames counter:\n%s", data)
	}
}

// TestInspectCommand converts and then extracts the frames again
func TestInspectCommand(t *testing.T) {
	setup(t)
	video := testVideo(t)
	outDir := t.TempDir()
	extractDir := t.TempDir()

	if _, stderr, err := run(t, "convert", "-o", outDir, "-n", "4", video); err != nil {
		t.Fatalf("Convert command failed: %v\nstderr: %s", err, stderr)
	}

	stdout, stderr, err := run(t, "inspect", "--list", "--extract", extractDir, outDir)
	if err != nil {
		t.Fatalf("Inspect command failed: %v\nstderr: %s", err, stderr)
	}

	sizes := readMetadata(t, outDir)
	if lines := strings.Count(stdout, "\n"); lines != len(sizes) {
		t.Errorf("Expected %d listed frames, got %d", len(sizes), lines)
	}
	for i, size := range sizes {
		data, err := os.ReadFile(filepath.Join(extractDir, fmt.Sprintf("frame-%04d.jpg", i)))
		if err != nil {
			t.Fatalf("Extracted frame %d missing: %v", i, err)
		}
		if len(data) != int(size) {
			t.Errorf("Frame %d: expected %d bytes, got %d", i, size, len(data))
		}
	}
}

// getProjectRoot returns the directory containing go.mod
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
