package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"remapper/internal/diagnostic"
	"remapper/internal/plan"
	"remapper/internal/rewrite"
)

// Request is one remap invocation.
type Request struct {
	Input       string
	Destination string
	Kind        plan.Kind
	Version     string
	// Project names the module being remapped in messages and errors.
	Project string
}

// StageResult reports one executed procedure.
type StageResult struct {
	Procedure string
	Stats     rewrite.Stats
	Duration  time.Duration
}

// Result reports a finished invocation.
type Result struct {
	Request     Request
	Stages      []StageResult
	Diagnostics *diagnostic.Diagnostics
}

// Message is the confirmation printed after a successful remap.
func (r *Result) Message() string {
	msg := fmt.Sprintf("Successfully remapped %s (%s)", filepath.Base(r.Request.Destination), r.Request.Kind)
	if r.Request.Project != "" {
		msg += " for " + r.Request.Project
	}

	return msg
}

// Driver executes plans. It holds no per-invocation state and may run
// several invocations at once.
type Driver struct {
	// Env is shared by every invocation; its Diagnostics field is replaced
	// by a fresh collector per invocation.
	Env plan.Env
	// ScratchDir holds scratch files; empty means the system temp directory.
	ScratchDir string
	// KeepScratchOnFailure leaves the scratch files of a failed invocation on
	// disk for inspection.
	KeepScratchOnFailure bool
}

// Run executes the plan of req.Kind.
func (d *Driver) Run(ctx context.Context, req Request) (*Result, error) {
	return d.RunPlan(ctx, req, req.Kind.Plan())
}

// RunPlan executes p against req.Input and publishes the result at
// req.Destination.
func (d *Driver) RunPlan(ctx context.Context, req Request, p plan.Plan) (res *Result, err error) {
	if err := validate(req, p); err != nil {
		return nil, err
	}

	log := d.logger().WithFields(logrus.Fields{
		"kind":    req.Kind.String(),
		"input":   req.Input,
		"project": req.Project,
	})

	env := d.Env
	env.Diagnostics = &diagnostic.Diagnostics{}

	arena := NewArena(d.ScratchDir)
	defer func() {
		if err != nil && d.KeepScratchOnFailure {
			log.WithField("scratch", arena.Paths()).Warn("Keeping scratch files of failed remap")
			return
		}

		if sweepErr := arena.Sweep(); sweepErr != nil {
			log.WithError(sweepErr).Warn("Failed to remove scratch files")
		}
	}()

	res = &Result{Request: req, Diagnostics: env.Diagnostics}
	current := req.Input

	for _, proc := range p {
		scratch, err := arena.New(proc.Name)
		if err != nil {
			return nil, err
		}

		start := time.Now()

		stats, err := proc.Run(ctx, env, req.Version, current, scratch)
		if err != nil {
			return nil, invocationError(req, "run procedure "+proc.Name, err)
		}

		res.Stages = append(res.Stages, StageResult{Procedure: proc.Name, Stats: stats, Duration: time.Since(start)})

		if current != req.Input {
			if err := arena.Release(current); err != nil {
				log.WithError(err).Warn("Failed to release scratch file")
			}
		}

		current = scratch
	}

	if err := publish(current, req.Destination); err != nil {
		return nil, invocationError(req, "publish result", err)
	}

	log.WithFields(logrus.Fields{
		"destination": req.Destination,
		"stages":      len(res.Stages),
		"warnings":    len(env.Diagnostics.Warnings),
	}).Info("Remap finished")

	return res, nil
}

func (d *Driver) logger() *logrus.Logger {
	if d.Env.Log == nil {
		return logrus.StandardLogger()
	}

	return d.Env.Log
}

func validate(req Request, p plan.Plan) error {
	var msg string

	switch {
	case len(p) == 0:
		msg = fmt.Sprintf("translation kind %s has no procedures", req.Kind)
	case req.Version == "":
		msg = "version identifier is required"
	case req.Input == "":
		msg = "input archive is required"
	case req.Destination == "":
		msg = "destination is required"
	default:
		return nil
	}

	return invocationError(req, "validate request", fmt.Errorf("%w: %s", diagnostic.ErrConfiguration, msg))
}

func invocationError(req Request, op string, err error) error {
	return &diagnostic.Error{
		Kind:        diagnostic.KindOf(err),
		Op:          op,
		Translation: req.Kind.String(),
		Project:     req.Project,
		Path:        req.Input,
		Err:         err,
	}
}

// publish copies src into a temporary file beside dst and renames it over
// dst.
func publish(src, dst string) (err error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary destination: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		return fmt.Errorf("failed to copy result: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("failed to move result into place: %w", err)
	}

	return nil
}
