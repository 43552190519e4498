// Package orchestrator wires target resolution, the process supervisor and
// the interactive controller into one launch.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/harshul/launchpad/internal/controller"
	"github.com/harshul/launchpad/internal/doctor"
	"github.com/harshul/launchpad/internal/launch"
	"github.com/harshul/launchpad/internal/manifest"
	"github.com/harshul/launchpad/internal/placeholder"
	"github.com/harshul/launchpad/internal/ports"
	"github.com/harshul/launchpad/internal/secrets"
	"github.com/harshul/launchpad/internal/supervisor"
	"github.com/harshul/launchpad/internal/ui"
	"github.com/harshul/launchpad/internal/workspace"
)

// Options controls how the orchestrator resolves and runs a target.
type Options struct {
	WorkDir      string // start directory; the manifest root
	ManifestPath string // relative to WorkDir unless absolute
	TargetID     string // empty selects the first launch entry
	Runtime      string
	Delay        time.Duration
	Ignore       []string
	Dashboard    bool
	StopTimeout  time.Duration
}

type Orchestrator struct {
	opts Options
}

// New fills in defaults for opts.
func New(opts Options) (*Orchestrator, error) {
	if opts.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determining working directory: %w", err)
		}
		opts.WorkDir = wd
	}
	if opts.ManifestPath == "" {
		opts.ManifestPath = manifest.DefaultFile
	}
	if opts.Runtime == "" {
		opts.Runtime = launch.DefaultRuntime
	}
	return &Orchestrator{opts: opts}, nil
}

// Resolution is the outcome of the resolution pipeline.
type Resolution struct {
	ID     string
	Target manifest.Target
	Paths  placeholder.Paths
	Spec   launch.Spec
}

// ManifestPath returns the absolute manifest path.
func (o *Orchestrator) ManifestPath() string {
	if filepath.IsAbs(o.opts.ManifestPath) {
		return o.opts.ManifestPath
	}
	return filepath.Join(o.opts.WorkDir, o.opts.ManifestPath)
}

// LoadManifest reads the manifest.
func (o *Orchestrator) LoadManifest() (*manifest.Manifest, error) {
	return manifest.Load(o.ManifestPath())
}

// Resolve runs the resolution pipeline: load the manifest, select the
// target, locate its package and build the launch spec. Every failure is
// returned as is; nothing is started.
func (o *Orchestrator) Resolve(ctx context.Context) (Resolution, error) {
	m, err := o.LoadManifest()
	if err != nil {
		return Resolution{}, err
	}

	id := o.opts.TargetID
	if id == "" {
		id = m.DefaultID()
		if id == "" {
			return Resolution{}, fmt.Errorf("%w: the launch list is empty", manifest.ErrTargetNotFound)
		}
		slog.Debug("no target given, using the first launch entry", "target", id)
	}

	target, err := m.Resolve(id)
	if err != nil {
		return Resolution{}, err
	}

	paths := placeholder.NewPaths(o.opts.WorkDir)
	if target.Package != "" {
		dir, err := workspace.Locate(ctx, m.PackageGlobs(), target.Package, o.opts.WorkDir)
		if err != nil {
			return Resolution{}, err
		}
		paths.Package = dir
	}

	spec, paths, err := launch.Build(target, paths, secrets.ReadEnvFile, launch.WithRuntime(o.opts.Runtime))
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{ID: id, Target: target, Paths: paths, Spec: spec}, nil
}

// Run resolves the target and supervises it until the user terminates it.
func (o *Orchestrator) Run(ctx context.Context) error {
	res, err := o.Resolve(ctx)
	if err != nil {
		return err
	}

	o.checkRuntime(res.Spec)
	o.checkInspect(res.Target)

	if o.opts.Dashboard {
		return o.runDashboard(ctx, res)
	}
	return o.runTerminal(ctx, res)
}

// checkRuntime warns when the runtime executable is not on PATH.
func (o *Orchestrator) checkRuntime(spec launch.Spec) {
	rt := spec.Runtime()
	if rt == "" {
		return
	}
	status := doctor.CheckRuntime(rt)
	if !status.Installed {
		ui.Warn(fmt.Sprintf("%s not found on PATH. Please install it.", rt))
		return
	}
	slog.Debug("runtime found", "runtime", rt, "path", status.Path, "version", status.Version)
}

// checkInspect warns when the debugger port is already taken.
func (o *Orchestrator) checkInspect(target manifest.Target) {
	if target.Inspect == "" || target.Exec != "" {
		return
	}
	conflict, err := ports.CheckInspect(target.Inspect)
	if err != nil {
		ui.Warn(err.Error())
		return
	}
	if conflict == nil {
		return
	}

	msg := fmt.Sprintf("Debugger port %d is busy", conflict.Port)
	if conflict.PID > 0 {
		msg += fmt.Sprintf(" (PID %d)", conflict.PID)
	}
	if conflict.Suggested > 0 {
		msg += fmt.Sprintf("; set \"inspect\": %q to use a free one", conflict.Suggest(target.Inspect))
	}
	ui.Warn(msg)
}

func (o *Orchestrator) supervisorOptions(spec launch.Spec, stdout io.Writer) supervisor.Options {
	return supervisor.Options{
		Spec:        spec,
		Delay:       o.opts.Delay,
		Ignore:      o.opts.Ignore,
		Stdout:      stdout,
		StopTimeout: o.opts.StopTimeout,
	}
}

// runTerminal streams output to the terminal and reads ctrl+r / ctrl+c
// from a raw-mode stdin.
func (o *Orchestrator) runTerminal(ctx context.Context, res Resolution) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan controller.Event, 64)
	var out io.Writer = os.Stdout

	restore, err := controller.RawMode(os.Stdin)
	if err != nil {
		slog.Debug("keyboard controls disabled", "error", err)
	} else {
		defer restore()
		out = ui.NewCRLFWriter(os.Stdout)
		prev := ui.Output()
		ui.SetOutput(out)
		defer ui.SetOutput(prev)
		go func() {
			if err := controller.ReadKeys(ctx, os.Stdin, controller.DefaultKeyMap(), events); err != nil && !errors.Is(err, context.Canceled) {
				slog.Debug("reading keys", "error", err)
			}
		}()
	}
	go controller.ForwardSignals(ctx, events)

	sup := supervisor.New(o.supervisorOptions(res.Spec, out))
	ctrl := controller.New(res.ID, sup, sup.Stop, out)

	supErr := make(chan error, 1)
	go func() { supErr <- sup.Run(ctx) }()
	go pump(ctx, sup.Events(), events, nil)

	err = ctrl.Run(ctx, events)
	cancel()
	if stopErr := sup.Stop(); stopErr != nil {
		slog.Debug("stopping supervisor", "error", stopErr)
	}
	if runErr := <-supErr; runErr != nil {
		return runErr
	}
	return ignoreCanceled(err)
}

// runDashboard shows the TUI; its keys feed the same controller.
func (o *Orchestrator) runDashboard(ctx context.Context, res Resolution) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan controller.Event, 64)
	send := func(kind controller.EventKind) {
		select {
		case events <- controller.Event{Kind: kind}:
		default:
		}
	}

	dash := ui.NewDashboardRunner(ui.DashboardConfig{
		Title:     res.ID,
		Command:   res.Spec.String(),
		Cwd:       res.Spec.Cwd,
		OnRestart: func() { send(controller.EventRestart) },
		OnQuit:    func() { send(controller.EventInterrupt) },
	})
	logOut := dash.LogWriter()
	prev := ui.Output()
	ui.SetOutput(logOut)
	defer ui.SetOutput(prev)

	go controller.ForwardSignals(ctx, events)

	sup := supervisor.New(o.supervisorOptions(res.Spec, logOut))
	ctrl := controller.New(res.ID, sup, sup.Stop, logOut)

	supErr := make(chan error, 1)
	go func() { supErr <- sup.Run(ctx) }()
	go pump(ctx, sup.Events(), events, func(ev supervisor.Event) {
		switch ev.Kind {
		case supervisor.EventStart:
			dash.SetStatus(ui.StatusRunning, int32(ev.PID))
		case supervisor.EventRestart:
			dash.SetStatus(ui.StatusRestarting, 0)
		case supervisor.EventExit:
			if ev.Crashed() {
				dash.SetStatus(ui.StatusCrashed, 0)
			} else {
				dash.SetStatus(ui.StatusExited, 0)
			}
		}
	})

	ctrlErr := make(chan error, 1)
	go func() {
		ctrlErr <- ctrl.Run(ctx, events)
		dash.Stop()
	}()

	dashErr := dash.Run(ctx)

	// The dashboard can also go away on its own; make sure the process
	// group goes with it.
	var err error
	select {
	case err = <-ctrlErr:
	case events <- controller.Event{Kind: controller.EventInterrupt}:
		err = <-ctrlErr
	}

	cancel()
	if stopErr := sup.Stop(); stopErr != nil {
		slog.Debug("stopping supervisor", "error", stopErr)
	}
	if runErr := <-supErr; runErr != nil {
		return runErr
	}
	if dashErr != nil {
		return fmt.Errorf("dashboard: %w", dashErr)
	}
	return ignoreCanceled(err)
}

// pump forwards supervisor events to the controller. observe, if set, sees
// every event first.
func pump(ctx context.Context, in <-chan supervisor.Event, out chan<- controller.Event, observe func(supervisor.Event)) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-in:
			if observe != nil {
				observe(ev)
			}
			cev, ok := toControllerEvent(ev)
			if !ok {
				continue
			}
			select {
			case out <- cev:
			case <-ctx.Done():
				return
			}
		}
	}
}

func toControllerEvent(ev supervisor.Event) (controller.Event, bool) {
	switch ev.Kind {
	case supervisor.EventStderr:
		return controller.Event{Kind: controller.EventStderr, Line: ev.Line}, true
	case supervisor.EventLog:
		return controller.Event{Kind: controller.EventLog, Line: ev.Line}, true
	case supervisor.EventExit:
		return controller.Event{Kind: controller.EventExit}, true
	default:
		return controller.Event{}, false
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
