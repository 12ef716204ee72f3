package util

import (
	"context"
	"io"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"
)

// TestHelperProcess is not a real test. It is re-executed as a child by the
// process tests below.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("VIDSHRINK_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("VIDSHRINK_HELPER_MODE") {
	case "echo":
		os.Stdout.WriteString("out-line\n")
		os.Stderr.WriteString("time=00:00:01.00\rtime=00:00:02.00\n")
		os.Exit(3)
	case "sleep":
		time.Sleep(30 * time.Second)
		os.Exit(0)
	}
	os.Exit(0)
}

func helperSpec(mode string) CmdSpec {
	return CmdSpec{
		Path: os.Args[0],
		Args: []string{"-test.run=TestHelperProcess"},
		Env:  []string{"VIDSHRINK_HELPER_PROCESS=1", "VIDSHRINK_HELPER_MODE=" + mode},
	}
}

func TestStartProcess_CapturesOutput(t *testing.T) {
	p, err := ExecLauncher{}.Start(context.Background(), helperSpec("echo"))
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer p.Close()

	errOut, err := io.ReadAll(p.Stderr())
	if err != nil {
		t.Fatalf("read stderr: %v", err)
	}
	select {
	case <-p.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("process did not exit")
	}

	if !strings.Contains(string(errOut), "time=00:00:02.00") {
		t.Errorf("stderr = %q", errOut)
	}
	if !strings.Contains(string(p.Stdout()), "out-line") {
		t.Errorf("stdout = %q", p.Stdout())
	}
	if p.ExitCode() != 3 {
		t.Errorf("ExitCode() = %d, want 3", p.ExitCode())
	}
}

func TestStartProcess_Terminate(t *testing.T) {
	p, err := StartProcess(helperSpec("sleep"))
	if err != nil {
		t.Fatalf("StartProcess() error: %v", err)
	}
	defer p.Close()
	go io.Copy(io.Discard, p.Stderr())

	if err := p.Terminate(); err != nil {
		t.Fatalf("Terminate() error: %v", err)
	}
	select {
	case <-p.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("process ignored terminate")
	}
	if runtime.GOOS != "windows" && p.ExitCode() != -1 {
		t.Errorf("ExitCode() = %d, want -1 after signal", p.ExitCode())
	}
	// Signalling a reaped process is not an error.
	if err := p.Kill(); err != nil {
		t.Errorf("Kill() after exit: %v", err)
	}
}

func TestStartProcess_MissingBinary(t *testing.T) {
	if _, err := StartProcess(CmdSpec{Path: "/nonexistent/ffmpeg"}); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestExecLauncher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (ExecLauncher{}).Start(ctx, helperSpec("echo")); err == nil {
		t.Error("expected error for cancelled context")
	}
}
