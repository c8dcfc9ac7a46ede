package migration

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

type (
	// Versioner gives running units read access to the runner state
	Versioner interface {
		Version(ctx context.Context, namespace string) (int, error)
		Mapping(ctx context.Context, namespace string) (Mapping, error)
	}

	// Executor runs raw statements against the tracked database
	Executor interface {
		Exec(ctx context.Context, statements ...string) error
	}

	// Env is handed to a unit right before it runs
	Env struct {
		Versioner Versioner
		Executor  Executor
		Entry     Entry
		Direction Direction
	}

	Unit interface {
		Up(ctx context.Context, env Env) error
		Down(ctx context.Context, env Env) error
	}

	// TrackingChanger is implemented by units that alter the tracking table
	// itself, the identity mode is detected again after they run
	TrackingChanger interface {
		ChangesTracking() bool
	}

	Factory func() Unit

	Funcs struct {
		UpFn   func(ctx context.Context, env Env) error
		DownFn func(ctx context.Context, env Env) error
	}
)

var _ Unit = (*Funcs)(nil)

func (f Funcs) Up(ctx context.Context, env Env) error {
	if f.UpFn == nil {
		return nil
	}

	return f.UpFn(ctx, env)
}

func (f Funcs) Down(ctx context.Context, env Env) error {
	if f.DownFn == nil {
		return nil
	}

	return f.DownFn(ctx, env)
}

// Registry maps class names to unit factories. A class registered with
// RegisterFor only serves its own namespace and is preferred over one
// registered for every namespace.
type Registry struct {
	sync.RWMutex
	factories map[registryKey]Factory
}

type registryKey struct {
	namespace string
	className string
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[registryKey]Factory)}
}

// Register makes the class available to every namespace
func (r *Registry) Register(className string, f Factory) error {
	return r.RegisterFor("", className, f)
}

func (r *Registry) RegisterFor(namespace, className string, f Factory) error {
	r.Lock()
	defer r.Unlock()

	k := registryKey{namespace: namespace, className: className}
	if _, ok := r.factories[k]; ok {
		if namespace == "" {
			return errors.Wrapf(ErrUnitAlreadyRegistered, "[%s]", className)
		}

		return errors.Wrapf(ErrUnitAlreadyRegistered, "[%s] in namespace [%s]", className, namespace)
	}

	r.factories[k] = f

	return nil
}

func (r *Registry) MustRegister(className string, f Factory) {
	if err := r.Register(className, f); err != nil {
		panic(err)
	}
}

func (r *Registry) MustRegisterFor(namespace, className string, f Factory) {
	if err := r.RegisterFor(namespace, className, f); err != nil {
		panic(err)
	}
}

func (r *Registry) Lookup(namespace, className string) (Factory, bool) {
	r.RLock()
	defer r.RUnlock()

	if f, ok := r.factories[registryKey{namespace: namespace, className: className}]; ok {
		return f, true
	}

	f, ok := r.factories[registryKey{className: className}]

	return f, ok
}

// Report describes a single run of a namespace
type Report struct {
	RunID     string
	Namespace string
	Direction Direction
	From      int
	To        int
	Executed  []Entry
}
