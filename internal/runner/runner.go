package runner

import (
	"context"

	"github.com/denismitr/mversion/internal/logger"
	"github.com/denismitr/mversion/internal/resolver"
	"github.com/denismitr/mversion/internal/store"
	"github.com/denismitr/mversion/migration"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type (
	Loader interface {
		Load(ctx context.Context, def migration.Definition) (migration.Unit, error)
	}

	IdentityDetector interface {
		DetectIdentity(ctx context.Context) (store.Identity, error)
	}

	// Options of a single run, Version takes precedence over Direction
	Options struct {
		Version   *int
		Direction migration.Direction
	}

	Runner struct {
		resolver *resolver.Resolver
		loader   Loader
		detector IdentityDetector
		executor migration.Executor
		lg       logger.Logger
		identity store.Identity
	}
)

var _ migration.Versioner = (*Runner)(nil)

func New(
	r *resolver.Resolver,
	l Loader,
	d IdentityDetector,
	e migration.Executor,
	lg logger.Logger,
) *Runner {
	return &Runner{
		resolver: r,
		loader:   l,
		detector: d,
		executor: e,
		lg:       lg,
	}
}

// Run moves the namespace up or down until the boundary computed from opts
// is reached. The first failing migration stops the run.
func (r *Runner) Run(ctx context.Context, namespace string, opts Options) (*migration.Report, error) {
	current, err := r.Version(ctx, namespace)
	if err != nil {
		return nil, err
	}

	id, err := r.Identity(ctx)
	if err != nil {
		return nil, err
	}

	mapping, err := r.resolver.Resolve(ctx, id, namespace, false)
	if err != nil {
		return nil, err
	}

	direction, boundary, err := plan(current, mapping.Latest(), opts)
	if err != nil {
		return nil, err
	}

	report := &migration.Report{
		RunID:     uuid.NewString(),
		Namespace: namespace,
		Direction: direction,
		From:      current,
		To:        current,
	}

	r.lg.Debugf(
		"run %s: namespace [%s] going %s from version %d, boundary %d",
		report.RunID, namespace, direction, current, boundary,
	)

	versions := mapping.Versions()
	if direction == migration.Down {
		reverse(versions)
	}

	for _, v := range versions {
		e := mapping[v]

		if (direction == migration.Up && v > boundary) || (direction == migration.Down && v < boundary) {
			break
		}

		if (direction == migration.Up && e.Migrated()) || (direction == migration.Down && !e.Migrated()) {
			continue
		}

		if err := r.Execute(ctx, e, direction); err != nil {
			return report, err
		}

		report.Executed = append(report.Executed, e)
	}

	if report.To, err = r.Version(ctx, namespace); err != nil {
		return report, err
	}

	return report, nil
}

// Execute runs a single migration in the given direction and records the outcome
func (r *Runner) Execute(ctx context.Context, e migration.Entry, direction migration.Direction) error {
	u, err := r.loader.Load(ctx, e.Definition)
	if err != nil {
		r.lg.Error(err)
		return err
	}

	env := migration.Env{
		Versioner: r,
		Executor:  r.executor,
		Entry:     e,
		Direction: direction,
	}

	r.lg.Debugf("running %s [%s] version %d of [%s]", direction, e.ClassName, e.Version, e.Namespace)

	switch direction {
	case migration.Up:
		err = u.Up(ctx, env)
	case migration.Down:
		err = u.Down(ctx, env)
	default:
		return errors.Wrapf(migration.ErrInvalidDirection, "[%s]", direction)
	}

	if err != nil {
		mErr := &migration.Error{
			Namespace: e.Namespace,
			Version:   e.Version,
			ClassName: e.ClassName,
			Op:        direction,
			Err:       err,
		}

		r.lg.Error(mErr)
		return mErr
	}

	if tc, ok := u.(migration.TrackingChanger); ok && tc.ChangesTracking() {
		r.ResetIdentity()
	}

	id, err := r.Identity(ctx)
	if err != nil {
		return r.recordFailed(e, direction, err)
	}

	if err := r.resolver.SetVersion(ctx, id, e, direction == migration.Up); err != nil {
		return r.recordFailed(e, direction, err)
	}

	r.lg.Successf("%s [%s] version %d of [%s]", pastTense(direction), e.ClassName, e.Version, e.Namespace)

	return nil
}

// Identity is detected once and reused until ResetIdentity is called
func (r *Runner) Identity(ctx context.Context) (store.Identity, error) {
	if r.identity != 0 {
		return r.identity, nil
	}

	id, err := r.detector.DetectIdentity(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "could not detect identity mode")
	}

	r.lg.Debugf("tracking identity mode: %s", id)
	r.identity = id

	return id, nil
}

func (r *Runner) ResetIdentity() {
	r.identity = 0
	r.resolver.Reset()
}

func (r *Runner) Version(ctx context.Context, namespace string) (int, error) {
	id, err := r.Identity(ctx)
	if err != nil {
		return 0, err
	}

	return r.resolver.Current(ctx, id, namespace)
}

func (r *Runner) Mapping(ctx context.Context, namespace string) (migration.Mapping, error) {
	id, err := r.Identity(ctx)
	if err != nil {
		return nil, err
	}

	return r.resolver.Resolve(ctx, id, namespace, true)
}

// the migration has already run, an operator has to reconcile the table by hand
func (r *Runner) recordFailed(e migration.Entry, direction migration.Direction, cause error) error {
	err := &migration.RecordError{Entry: e, Op: direction, Err: cause}

	r.lg.Error(err)

	return err
}

func plan(current, latest int, opts Options) (migration.Direction, int, error) {
	if opts.Version != nil {
		target := *opts.Version
		if target <= current {
			return migration.Down, target + 1, nil
		}

		return migration.Up, target, nil
	}

	switch opts.Direction {
	case migration.Up:
		return migration.Up, latest, nil
	case migration.Down:
		return migration.Down, current, nil
	case "":
		return "", 0, migration.ErrDirectionNotSpecified
	}

	return "", 0, errors.Wrapf(migration.ErrInvalidDirection, "[%s]", opts.Direction)
}

func reverse(versions []int) {
	for i, j := 0, len(versions)-1; i < j; i, j = i+1, j-1 {
		versions[i], versions[j] = versions[j], versions[i]
	}
}

func pastTense(d migration.Direction) string {
	if d == migration.Down {
		return "rolled back"
	}

	return "migrated"
}
