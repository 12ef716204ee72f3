// Package job supervises a single ffmpeg compression run: probe, encode,
// progress reporting, cancellation and the terminal outcome.
package job

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"vidshrink/internal/encoder"
	"vidshrink/internal/model"
	"vidshrink/internal/progress"
	"vidshrink/internal/util"
	"vidshrink/internal/util/format"
)

// Defaults for the tunable timings.
const (
	DefaultGracePeriod      = 1 * time.Second
	DefaultProgressInterval = 500 * time.Millisecond
)

// Supervisor runs at most one compression job at a time and reports its
// events to a progress.Reporter.
type Supervisor struct {
	runner           util.CmdRunner
	launcher         util.Launcher
	reporter         progress.Reporter
	log              hclog.Logger
	grace            time.Duration
	progressInterval time.Duration
	probeTimeout     time.Duration
	now              func() time.Time

	mu      sync.Mutex
	state   State
	current *run
	last    progress.Result
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithRunner injects the command runner used for probing.
func WithRunner(r util.CmdRunner) Option {
	return func(s *Supervisor) {
		s.runner = r
	}
}

// WithLauncher injects the process launcher used for encoding.
func WithLauncher(l util.Launcher) Option {
	return func(s *Supervisor) {
		s.launcher = l
	}
}

// WithReporter attaches the event sink.
func WithReporter(rp progress.Reporter) Option {
	return func(s *Supervisor) {
		s.reporter = rp
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l hclog.Logger) Option {
	return func(s *Supervisor) {
		s.log = l
	}
}

// WithGracePeriod sets how long Stop waits after a graceful request before killing.
func WithGracePeriod(d time.Duration) Option {
	return func(s *Supervisor) {
		s.grace = d
	}
}

// WithProgressInterval sets the minimum spacing between progress events.
func WithProgressInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		s.progressInterval = d
	}
}

// WithProbeTimeout bounds the inspection run.
func WithProbeTimeout(d time.Duration) Option {
	return func(s *Supervisor) {
		s.probeTimeout = d
	}
}

// WithClock replaces time.Now for progress and ETA computation.
func WithClock(now func() time.Time) Option {
	return func(s *Supervisor) {
		s.now = now
	}
}

// New constructs a Supervisor with the provided options.
func New(opts ...Option) *Supervisor {
	s := &Supervisor{
		grace:            DefaultGracePeriod,
		progressInterval: DefaultProgressInterval,
		probeTimeout:     encoder.DefaultProbeTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	if s.runner == nil {
		s.runner = util.NewDefaultRunner()
	}
	if s.launcher == nil {
		s.launcher = util.ExecLauncher{}
	}
	if s.reporter == nil {
		s.reporter = progress.Nop{}
	}
	if s.log == nil {
		s.log = hclog.NewNullLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// run is the per-Start state. Fields below mu are guarded by Supervisor.mu.
type run struct {
	id      string
	req     model.Request
	ctx     context.Context
	log     hclog.Logger
	started time.Time

	stopFlag atomic.Bool
	stopDone chan struct{} // closed when the first Stop finishes escalating
	done     chan struct{}

	proc        util.Process
	probeCancel context.CancelFunc
	closed      bool // terminal outcome decided; later Stops are no-ops

	result progress.Result // set before done is closed
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Last returns the terminal result of the most recent finished run.
func (s *Supervisor) Last() progress.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Done returns a channel closed when the current run has finished. With no
// run in flight the channel is already closed.
func (s *Supervisor) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		c := make(chan struct{})
		close(c)
		return c
	}
	return s.current.done
}

// Start validates req and launches the job in the background. It returns a
// *ConfigError for unusable paths and ErrJobActive while a run is in flight.
// Cancelling ctx is equivalent to calling Stop.
func (s *Supervisor) Start(ctx context.Context, req model.Request) (string, error) {
	r, err := s.start(ctx, req)
	if err != nil {
		return "", err
	}
	return r.id, nil
}

func (s *Supervisor) start(ctx context.Context, req model.Request) (*run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return nil, ErrJobActive
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	r := &run{
		id:       id,
		req:      req,
		ctx:      ctx,
		log:      s.log.With("job_id", id),
		started:  s.now(),
		stopDone: make(chan struct{}),
		done:     make(chan struct{}),
	}
	s.current = r
	s.state = StateProbing
	r.log.Info("job started", "input", req.InputPath, "output", req.OutputPath)

	go s.execute(r)
	go func() {
		select {
		case <-ctx.Done():
			s.stopRun(r)
		case <-r.done:
		}
	}()
	return r, nil
}

// Run starts the job and blocks until its terminal result is known.
func (s *Supervisor) Run(ctx context.Context, req model.Request) (progress.Result, error) {
	r, err := s.start(ctx, req)
	if err != nil {
		return progress.Result{}, err
	}
	<-r.done
	return r.result, nil
}

func validate(req model.Request) error {
	if req.FFmpegPath == "" || !util.IsRegularFile(req.FFmpegPath) {
		return &ConfigError{Field: "ffmpeg", Msg: fmt.Sprintf("ffmpeg not found at %q", req.FFmpegPath)}
	}
	if req.InputPath == "" || !util.IsRegularFile(req.InputPath) {
		return &ConfigError{Field: "input", Msg: fmt.Sprintf("input file not found: %q", req.InputPath)}
	}
	if req.OutputPath == "" {
		return &ConfigError{Field: "output", Msg: "output path is required"}
	}
	if util.SamePath(req.InputPath, req.OutputPath) {
		return &ConfigError{Field: "output", Msg: "output must differ from input"}
	}
	if err := util.EnsureDir(filepath.Dir(req.OutputPath)); err != nil {
		return &ConfigError{Field: "output", Msg: fmt.Sprintf("cannot create output directory: %v", err)}
	}
	return nil
}

// Stop cancels the current run: a graceful terminate, then a kill once the
// grace period runs out. It blocks until the encoder has exited. Calling it
// with no run, after the outcome is decided, or a second time is a no-op.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	r := s.current
	s.mu.Unlock()
	if r != nil {
		s.stopRun(r)
	}
}

func (s *Supervisor) stopRun(r *run) {
	s.mu.Lock()
	if r.closed || !r.stopFlag.CompareAndSwap(false, true) {
		s.mu.Unlock()
		return
	}
	p := r.proc
	if r.probeCancel != nil {
		r.probeCancel()
	}
	if s.current == r {
		s.state = StateStopping
	}
	s.mu.Unlock()
	defer close(r.stopDone)

	s.status(r, progress.LevelWarn, "Stop requested...")
	if p == nil || exited(p) {
		return
	}

	s.status(r, progress.LevelWarn, "Asking ffmpeg to stop (terminate)...")
	if err := p.Terminate(); err != nil {
		s.stopFailed(r, err)
	}
	t := time.NewTimer(s.grace)
	defer t.Stop()
	select {
	case <-p.Done():
		s.status(r, progress.LevelWarn, "ffmpeg stopped after terminate.")
		return
	case <-t.C:
	}

	r.log.Warn("grace period expired, killing encoder", "grace", s.grace, "pid", p.Pid())
	s.status(r, progress.LevelWarn, "ffmpeg did not stop, forcing (kill)...")
	if err := p.Kill(); err != nil {
		s.stopFailed(r, err)
	}
	<-p.Done()
	s.status(r, progress.LevelWarn, "ffmpeg forced to stop.")
}

func (s *Supervisor) stopFailed(r *run, err error) {
	msg := fmt.Sprintf("Error while stopping ffmpeg: %v", err)
	r.log.Error("stop failed", "error", err)
	s.status(r, progress.LevelError, msg)
	s.reporter.Alert(progress.Alert{JobID: r.id, Title: "Stop failed", Message: msg})
}

func exited(p util.Process) bool {
	select {
	case <-p.Done():
		return true
	default:
		return false
	}
}

// execute is the worker body. It always ends in exactly one Result.
func (s *Supervisor) execute(r *run) {
	res := progress.Result{JobID: r.id, OutputPath: r.req.OutputPath, Code: progress.CodeFailure}
	spawned := false
	defer func() {
		if v := recover(); v != nil {
			r.log.Error("unexpected panic in job", "panic", v, "stack", string(debug.Stack()))
			s.reap(r)
			msg := fmt.Sprintf("Unexpected internal error: %v", v)
			s.status(r, progress.LevelError, msg)
			s.reporter.Alert(progress.Alert{JobID: r.id, Title: "Internal error", Message: msg})
			res.Code = progress.CodeFailure
			res.FinalMB = 0
			res.Err = fmt.Errorf("internal error: %v", v)
			if r.stopFlag.Load() {
				res.Code = progress.CodeCancelled
				res.Err = ErrCancelled
			}
		}
		s.finish(r, res, spawned)
	}()
	s.runJob(r, &res, &spawned)
}

// reap kills and waits for any live encoder after a panic.
func (s *Supervisor) reap(r *run) {
	s.mu.Lock()
	p := r.proc
	s.mu.Unlock()
	if p == nil {
		return
	}
	_ = p.Kill()
	<-p.Done()
	_ = p.Close()
}

func (s *Supervisor) runJob(r *run, res *progress.Result, spawned *bool) {
	s.status(r, progress.LevelInfo, "Starting: "+filepath.Base(r.req.InputPath))

	if n, err := util.FileSize(r.req.InputPath); err == nil {
		res.OriginalMB = format.MB(n)
		s.status(r, progress.LevelInfo, fmt.Sprintf("Original size: %.2f MB", res.OriginalMB))
	} else {
		s.status(r, progress.LevelWarn, fmt.Sprintf("Could not read input size: %v", err))
	}

	info, ok := s.probe(r, res)
	if !ok {
		return
	}

	spec := encoder.Resolve(r.req.Selection)
	args := encoder.BuildArgs(spec, info, r.req.InputPath, r.req.OutputPath)
	outFPS := encoder.OutputFrameRate(info.FrameRate, spec.FrameSkip)
	s.status(r, progress.LevelInfo, fmt.Sprintf("Settings: codec=%s, CRF=%d, preset=%s", spec.Encoder, spec.CRF, spec.Preset))
	s.status(r, progress.LevelInfo, fmt.Sprintf("Resolution: %s, output fps: %.1f", resolutionLabel(r.req.Selection, spec), outFPS))
	s.status(r, progress.LevelInfo, "Starting ffmpeg compression...")
	s.status(r, progress.LevelCommand, util.ShellQuote(r.req.FFmpegPath, args))

	p, ok := s.spawn(r, args, res)
	if !ok {
		return
	}
	*spawned = true

	scanErr := s.stream(r, p, info.DurationSec)
	if scanErr != nil && !r.stopFlag.Load() {
		r.log.Error("reading encoder output failed", "error", scanErr)
		s.status(r, progress.LevelError, fmt.Sprintf("Error reading ffmpeg output: %v", scanErr))
		_ = p.Kill()
	}
	<-p.Done()
	code := p.ExitCode()
	stdout := p.Stdout()
	_ = p.Close()
	r.log.Info("encoder exited", "code", code)

	switch {
	case r.stopFlag.Load():
		s.status(r, progress.LevelWarn, "Compression cancelled by user.")
		res.Code = progress.CodeCancelled
		res.Err = ErrCancelled

	case scanErr != nil:
		msg := "Error while reading ffmpeg output"
		s.reporter.Alert(progress.Alert{JobID: r.id, Title: "ffmpeg error", Message: msg})
		res.Code = progress.CodeFailure
		res.Err = &RunError{Code: progress.CodeFailure, Msg: msg, Err: scanErr}

	case code == 0:
		s.checkOutput(r, res, info.DurationSec)

	default:
		failCode := code
		if failCode == 0 || failCode == progress.CodeCancelled {
			failCode = progress.CodeFailure
		}
		s.status(r, progress.LevelError, fmt.Sprintf("✗ ffmpeg compression failed (code: %d).", code))
		if len(stdout) > 0 {
			s.status(r, progress.LevelToolOutput, "--- ffmpeg standard output ---")
			s.status(r, progress.LevelToolOutput, string(stdout))
			s.status(r, progress.LevelToolOutput, "------------------------------")
		}
		s.reporter.Alert(progress.Alert{
			JobID:   r.id,
			Title:   "ffmpeg error",
			Message: fmt.Sprintf("ffmpeg failed (code %d). Check the log for details.", code),
		})
		res.Code = failCode
		res.Err = &RunError{Code: code, Msg: "ffmpeg exited with an error"}
	}
}

func (s *Supervisor) probe(r *run, res *progress.Result) (model.MediaInfo, bool) {
	s.status(r, progress.LevelInfo, "Reading video information...")

	pctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.mu.Lock()
	r.probeCancel = cancel
	stopped := r.stopFlag.Load()
	s.mu.Unlock()
	if stopped {
		cancel()
	}

	info, warnings, err := encoder.Probe(pctx, s.runner, r.req.FFmpegPath, r.req.InputPath, s.probeTimeout)

	s.mu.Lock()
	r.probeCancel = nil
	s.mu.Unlock()

	if r.stopFlag.Load() {
		s.status(r, progress.LevelWarn, "Cancelled before encoding started.")
		res.Code = progress.CodeCancelled
		res.Err = ErrCancelled
		return model.MediaInfo{}, false
	}
	if err != nil {
		r.log.Error("probe failed", "error", err)
		msg := fmt.Sprintf("Could not read video information: %v", err)
		s.status(r, progress.LevelError, msg)
		s.reporter.Alert(progress.Alert{JobID: r.id, Title: "ffmpeg error", Message: msg})
		res.Code = progress.CodeFailure
		res.Err = err
		return model.MediaInfo{}, false
	}

	for _, w := range warnings {
		s.status(r, progress.LevelWarn, "Warning: "+w)
	}
	if info.DurationSec > 0 {
		s.status(r, progress.LevelInfo, "Duration: "+format.Clock(time.Duration(info.DurationSec*float64(time.Second))))
	}
	return info, true
}

func (s *Supervisor) spawn(r *run, args []string, res *progress.Result) (util.Process, bool) {
	s.mu.Lock()
	if r.stopFlag.Load() || r.ctx.Err() != nil {
		s.mu.Unlock()
		s.status(r, progress.LevelWarn, "Cancelled before encoding started.")
		res.Code = progress.CodeCancelled
		res.Err = ErrCancelled
		return nil, false
	}
	p, err := s.launcher.Start(r.ctx, util.CmdSpec{Path: r.req.FFmpegPath, Args: args})
	if err == nil {
		r.proc = p
		s.state = StateEncoding
	}
	s.mu.Unlock()

	if err != nil {
		if r.stopFlag.Load() || r.ctx.Err() != nil {
			res.Code = progress.CodeCancelled
			res.Err = ErrCancelled
			return nil, false
		}
		r.log.Error("spawn failed", "error", err)
		msg := fmt.Sprintf("ffmpeg could not be executed: %s: %v", r.req.FFmpegPath, err)
		s.status(r, progress.LevelError, msg)
		s.reporter.Alert(progress.Alert{JobID: r.id, Title: "Could not run ffmpeg", Message: msg})
		res.Code = progress.CodeFailure
		res.Err = &SpawnError{Path: r.req.FFmpegPath, Err: err}
		return nil, false
	}
	r.log.Info("encoder started", "pid", p.Pid())
	return p, true
}

// stream consumes the encoder's stderr until EOF or a stop request.
func (s *Supervisor) stream(r *run, p util.Process, totalSec float64) error {
	sc := bufio.NewScanner(p.Stderr())
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(util.ScanLinesCR)

	parser := encoder.NewProgressParser(r.started, s.now)
	lastPercent := -1
	var lastEmit time.Time

	for sc.Scan() {
		if r.stopFlag.Load() {
			s.status(r, progress.LevelWarn, "Stop detected during encoding.")
			break
		}
		line := sc.Text()
		if encoder.HasDiagnosticMarker(line) {
			s.status(r, progress.LevelWarn, "[ffmpeg]: "+line)
		}
		pr, ok := parser.TryParse(line, totalSec)
		if !ok || pr.Percent < lastPercent {
			continue
		}
		now := s.now()
		if !lastEmit.IsZero() && now.Sub(lastEmit) < s.progressInterval {
			continue
		}
		lastPercent = pr.Percent
		lastEmit = now
		s.reporter.Update(progress.Update{
			JobID:    r.id,
			Percent:  pr.Percent,
			ETA:      pr.ETA,
			ETAKnown: pr.ETAKnown,
			Label:    format.ETALabel(pr.ETA, pr.ETAKnown),
		})
	}
	err := sc.Err()
	// Unread output must not block the child while it shuts down.
	go func() { _, _ = io.Copy(io.Discard, p.Stderr()) }()
	return err
}

// checkOutput enforces that a zero exit produced a non-empty file.
func (s *Supervisor) checkOutput(r *run, res *progress.Result, totalSec float64) {
	name := filepath.Base(r.req.OutputPath)
	n, err := util.FileSize(r.req.OutputPath)
	if err != nil || n == 0 {
		msg := fmt.Sprintf("✗ Post-compression error: output file %q is missing or empty even though ffmpeg returned 0.", name)
		if err != nil && !os.IsNotExist(err) {
			msg = fmt.Sprintf("✗ Error checking output file: %v", err)
		}
		r.log.Error("output check failed", "path", r.req.OutputPath, "size", n, "error", err)
		s.status(r, progress.LevelError, msg)
		s.reporter.Alert(progress.Alert{JobID: r.id, Title: "Post-compression error", Message: msg})
		res.Code = progress.CodeFailure
		res.Err = &RunError{Code: progress.CodeFailure, Msg: "output missing or empty", Err: err}
		return
	}

	if totalSec > 1 {
		s.reporter.Update(progress.Update{JobID: r.id, Percent: 100, ETAKnown: true, Label: format.ETALabel(0, true)})
	}
	res.Code = progress.CodeSuccess
	res.FinalMB = format.MB(n)
	res.Err = nil
	s.status(r, progress.LevelInfo, "✓ Compression finished: "+name)
	s.status(r, progress.LevelInfo, fmt.Sprintf("Final size: %.2f MB", res.FinalMB))
	if red, ok := res.ReductionPercent(); ok {
		s.status(r, progress.LevelInfo, fmt.Sprintf("Reduced by: %.1f%%", red))
	}
	s.status(r, progress.LevelInfo, "Total time: "+format.Clock(s.now().Sub(r.started)))
}

// finish removes partial output, emits the single Result and frees the slot.
func (s *Supervisor) finish(r *run, res progress.Result, spawned bool) {
	s.mu.Lock()
	r.closed = true
	stopping := r.stopFlag.Load()
	s.mu.Unlock()
	if stopping {
		// Stop's status events belong before the terminal one.
		<-r.stopDone
	}

	if spawned && res.Code != progress.CodeSuccess {
		if err := util.RemoveIfExists(r.req.OutputPath); err != nil {
			r.log.Warn("could not remove partial output", "path", r.req.OutputPath, "error", err)
		}
	}

	r.log.Info("job finished", "outcome", res.Outcome(), "code", res.Code)
	s.reporter.Result(res)

	s.mu.Lock()
	switch res.Outcome() {
	case progress.OutcomeSuccess:
		s.state = StateSucceeded
	case progress.OutcomeCancelled:
		s.state = StateCancelled
	default:
		s.state = StateFailed
	}
	s.last = res
	r.result = res
	s.current = nil
	s.mu.Unlock()
	close(r.done)
}

// status mirrors a status line into the log file and emits it.
func (s *Supervisor) status(r *run, lvl progress.Level, msg string) {
	switch lvl {
	case progress.LevelWarn:
		r.log.Warn(msg)
	case progress.LevelError:
		r.log.Error(msg)
	case progress.LevelCommand:
		r.log.Info("encoder command", "command", msg)
	case progress.LevelToolOutput:
		r.log.Debug("encoder output", "output", msg)
	default:
		r.log.Info(msg)
	}
	s.reporter.Log(progress.Log{JobID: r.id, Level: lvl, Message: msg})
}

func resolutionLabel(sel model.Selection, spec model.EncodeSpec) string {
	switch {
	case spec.Scale == nil:
		return string(model.ResolutionOriginal)
	case spec.Scale.Named != "":
		return string(spec.Scale.Named)
	default:
		return fmt.Sprintf("%dx%d", sel.CustomWidth, sel.CustomHeight)
	}
}
