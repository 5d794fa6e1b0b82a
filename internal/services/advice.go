package services

import (
	"context"
	"sync"

	"github.com/localnerve/cubedb/internal/ncube"
)

type registeredAdvice struct {
	pattern string
	advice  ncube.Advice
}

// adviceRegistry keeps an ordered advice list per coordinate.
type adviceRegistry struct {
	mu      sync.RWMutex
	byCoord map[string][]registeredAdvice
}

func newAdviceRegistry() *adviceRegistry {
	return &adviceRegistry{byCoord: make(map[string][]registeredAdvice)}
}

func (r *adviceRegistry) matching(appID *ncube.ApplicationID, method string) []ncube.Advice {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ncube.Advice
	for _, ra := range r.byCoord[appID.CacheKey()] {
		if ncube.MatchAdvice(ra.pattern, method) {
			out = append(out, ra.advice)
		}
	}
	return out
}

// AddAdvice registers advice for cube methods of appID matching the glob pattern, e.g.
// "rates.*()" or "*.calc()". Advices run in registration order.
func (m *Manager) AddAdvice(appID *ncube.ApplicationID, pattern string, advice ncube.Advice) {
	m.advices.mu.Lock()
	defer m.advices.mu.Unlock()
	key := appID.CacheKey()
	m.advices.byCoord[key] = append(m.advices.byCoord[key], registeredAdvice{pattern: pattern, advice: advice})
}

// ClearAdvices drops every advice registered for appID.
func (m *Manager) ClearAdvices(appID *ncube.ApplicationID) {
	m.advices.mu.Lock()
	defer m.advices.mu.Unlock()
	delete(m.advices.byCoord, appID.CacheKey())
}

// Execute looks up the cell of cubeName bound by input, wrapped by the matching advices.
// A Before returning false stops the call: no later advice runs, no cell is evaluated,
// no After runs, and Execute returns nil, false. Otherwise every After runs in reverse
// order once the cell is evaluated.
func (m *Manager) Execute(ctx context.Context, appID *ncube.ApplicationID, cubeName string, input, output map[string]any) (any, bool, error) {
	cube, err := m.GetCube(ctx, appID, cubeName)
	if err != nil {
		return nil, false, err
	}
	if input == nil {
		input = make(map[string]any)
	}
	if output == nil {
		output = make(map[string]any)
	}

	method := ncube.MethodName(cube.Name(), input)
	advices := m.advices.matching(appID, method)
	for _, a := range advices {
		if !a.Before(ctx, cube, input, output) {
			m.logger.Debug("cube execution vetoed", "app", appID.String(), "method", method)
			return nil, false, nil
		}
	}

	env := &ncube.Env{Executor: m.executor, Resolver: &coordinateResolver{m: m, appID: appID}}
	result, err := cube.GetCell(ctx, input, output, env)

	for i := len(advices) - 1; i >= 0; i-- {
		advices[i].After(ctx, cube, input, output, result, err)
	}
	return result, true, err
}

// coordinateResolver resolves Reference cells against one coordinate.
type coordinateResolver struct {
	m     *Manager
	appID *ncube.ApplicationID
}

func (r *coordinateResolver) ResolveCube(ctx context.Context, name string) (*ncube.Cube, error) {
	return r.m.GetCube(ctx, r.appID, name)
}
