package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/localnerve/cubedb/internal/ncube"
	"github.com/localnerve/cubedb/internal/persister"
)

// Manager is the cube store: persistence, branch/merge engine, cache and advice, built
// around one injected Persister. It is safe for concurrent use.
type Manager struct {
	persister persister.Persister
	logger    *slog.Logger
	executor  ncube.Executor
	cache     *cubeCache
	advices   *adviceRegistry
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// WithExecutor sets the expression executor used by Execute and classpath resolution.
func WithExecutor(e ncube.Executor) ManagerOption {
	return func(m *Manager) { m.executor = e }
}

// WithCache turns the cube cache on or off. It is on by default.
func WithCache(enabled bool) ManagerOption {
	return func(m *Manager) { m.cache.enabled = enabled }
}

// NewManager builds a Manager. A nil persister is accepted, but every operation that
// needs storage then fails with ErrIllegalState.
func NewManager(p persister.Persister, opts ...ManagerOption) *Manager {
	m := &Manager{
		persister: p,
		logger:    slog.Default(),
		executor:  ncube.NopExecutor{},
		cache:     newCubeCache(),
		advices:   newAdviceRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) store() (persister.Persister, error) {
	if m.persister == nil {
		return nil, ncube.IllegalState("persister not set")
	}
	return m.persister, nil
}

// storeError maps persister failures into the engine's error taxonomy.
func storeError(err error) error {
	if errors.Is(err, persister.ErrStale) {
		return fmt.Errorf("%w: %w", ncube.ErrIllegalState, err)
	}
	return err
}

// current loads the newest revision of name, or nil when the name was never stored.
func (m *Manager) current(ctx context.Context, appID *ncube.ApplicationID, name string) (*persister.Revision, error) {
	p, err := m.store()
	if err != nil {
		return nil, err
	}
	rev, err := p.LoadCurrent(ctx, appID, name)
	if errors.Is(err, persister.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// requireMutable rejects writes to RELEASE coordinates.
func requireMutable(appID *ncube.ApplicationID, action string) error {
	if appID == nil {
		return ncube.IllegalArgument("application id cannot be nil")
	}
	if appID.IsRelease() {
		return ncube.IllegalArgument("cannot %s RELEASE cube in %s", action, appID)
	}
	return nil
}

func requireBranch(appID *ncube.ApplicationID) error {
	if appID == nil {
		return ncube.IllegalArgument("application id cannot be nil")
	}
	if appID.IsHead() {
		return ncube.IllegalArgument("%s is HEAD, a branch is required", appID)
	}
	return nil
}

// uniqueNames drops blanks and case-insensitive duplicates, keeping first spellings.
func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

func newTxID() string {
	return uuid.New().String()
}

func encode(cube *ncube.Cube) (string, []byte, error) {
	data, err := cube.MarshalJSON()
	if err != nil {
		return "", nil, fmt.Errorf("encode cube %s: %w", cube.Name(), err)
	}
	return cube.SHA1(), data, nil
}
