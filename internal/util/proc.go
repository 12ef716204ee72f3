package util

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"syscall"
)

// Process is a running child whose stderr is consumed by the caller and whose
// stdout is captured in memory.
type Process interface {
	Pid() int
	// Stderr streams the child's diagnostic output until it exits.
	Stderr() io.Reader
	// Stdout returns everything the child wrote to stdout. Complete only after Done.
	Stdout() []byte
	// Done is closed once the child has been reaped.
	Done() <-chan struct{}
	// ExitCode is valid after Done. -1 means killed by a signal.
	ExitCode() int
	// Terminate asks the child to stop. Kill forces it.
	Terminate() error
	Kill() error
	// Close releases the read side of the stderr pipe.
	Close() error
}

// Launcher starts a long-running child process.
type Launcher interface {
	Start(ctx context.Context, spec CmdSpec) (Process, error)
}

// ExecLauncher launches real processes via os/exec.
type ExecLauncher struct{}

// Start launches spec.Path with stdin closed. The child is not bound to ctx;
// callers own its lifetime through Terminate and Kill.
func (ExecLauncher) Start(ctx context.Context, spec CmdSpec) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return StartProcess(spec)
}

// StartProcess launches the command and returns a handle to it.
func StartProcess(spec CmdSpec) (Process, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(spec.Path, spec.Args...)
	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}
	if spec.Env != nil {
		cmd.Env = append(os.Environ(), spec.Env...)
	}
	p := &execProcess{
		cmd:    cmd,
		stderr: r,
		done:   make(chan struct{}),
		code:   -1,
	}
	cmd.Stdin = nil
	cmd.Stdout = &p.stdout
	cmd.Stderr = w

	if err := cmd.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return nil, err
	}
	// The child holds its own copy; EOF arrives when it exits.
	_ = w.Close()

	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		p.code = ExitCode(err)
		p.mu.Unlock()
		close(p.done)
	}()
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stderr *os.File
	stdout bytes.Buffer
	done   chan struct{}

	mu   sync.Mutex
	code int
}

func (p *execProcess) Pid() int              { return p.cmd.Process.Pid }
func (p *execProcess) Stderr() io.Reader     { return p.stderr }
func (p *execProcess) Done() <-chan struct{} { return p.done }

func (p *execProcess) Stdout() []byte {
	select {
	case <-p.done:
		return p.stdout.Bytes()
	default:
		return nil
	}
}

func (p *execProcess) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.code
}

func (p *execProcess) Terminate() error {
	if runtime.GOOS == "windows" {
		// No SIGTERM equivalent for console-less children.
		return p.Kill()
	}
	return ignoreDone(p.cmd.Process.Signal(syscall.SIGTERM))
}

func (p *execProcess) Kill() error {
	return ignoreDone(p.cmd.Process.Kill())
}

func (p *execProcess) Close() error {
	return p.stderr.Close()
}

func ignoreDone(err error) error {
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
