package client

import (
	"context"
	"encoding/json"
	"sync"
)

// State is the lifecycle of a collection provider.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Provider owns one remote-backed collection and republishes it to the
// screens. On login it loads cache-first; on logout it drops both the
// published collection and its cache entry. A cache hit short-circuits
// the remote read entirely: only Fetch or a prior invalidation forces a
// live fetch.
type Provider[T any] struct {
	key     string
	session *Session
	cache   Cache
	remote  func(ctx context.Context) ([]T, error)

	// lifetime of the owning application; session-triggered loads run
	// under it so teardown cancels them
	ctx context.Context

	mu      sync.Mutex
	loading bool
	state   State
	items   []T
	err     error
}

func newProvider[T any](ctx context.Context, key string, session *Session, cache Cache, remote func(ctx context.Context) ([]T, error)) *Provider[T] {
	p := &Provider[T]{
		key:     key,
		session: session,
		cache:   cache,
		remote:  remote,
		ctx:     ctx,
		state:   Idle,
	}

	session.Subscribe(func(loggedIn bool) {
		if loggedIn {
			_ = p.Load(p.ctx)
		} else {
			p.clear()
		}
	})

	return p
}

// Load runs the cache-or-fetch policy. A malformed cache payload is
// treated as a miss. At most one load runs at a time; overlapping
// triggers are dropped.
func (p *Provider[T]) Load(ctx context.Context) error {
	if _, ok := p.session.Identity(); !ok {
		return ErrNotAuthenticated
	}

	p.mu.Lock()
	if p.loading {
		p.mu.Unlock()
		return nil
	}
	p.loading = true
	p.state = Loading
	p.mu.Unlock()

	if cached, hit, err := p.cache.Get(p.key); err == nil && hit {
		var items []T
		if err := json.Unmarshal([]byte(cached), &items); err == nil {
			p.publish(items)
			return nil
		}
		// unreadable entry: drop it and fall through to the remote read
		_ = p.cache.Remove(p.key)
	}

	return p.refetch(ctx)
}

// Fetch is the explicit re-fetch: it never consults the cache, always
// performs the remote read and overwrites the cache entry.
func (p *Provider[T]) Fetch(ctx context.Context) error {
	p.mu.Lock()
	if p.loading {
		p.mu.Unlock()
		return nil
	}
	p.loading = true
	p.state = Loading
	p.mu.Unlock()

	return p.refetch(ctx)
}

func (p *Provider[T]) refetch(ctx context.Context) error {
	items, err := p.remote(ctx)
	if err != nil {
		p.fail(err)
		return err
	}

	if encoded, err := json.Marshal(items); err == nil {
		_ = p.cache.Set(p.key, string(encoded))
	}
	p.publish(items)
	return nil
}

func (p *Provider[T]) publish(items []T) {
	p.mu.Lock()
	p.loading = false
	p.state = Ready
	p.items = items
	p.err = nil
	p.mu.Unlock()
}

// fail keeps the last-known collection intact; only the state and the
// surfaced error change.
func (p *Provider[T]) fail(err error) {
	p.mu.Lock()
	p.loading = false
	p.state = Failed
	p.err = err
	p.mu.Unlock()
}

func (p *Provider[T]) clear() {
	_ = p.cache.Remove(p.key)
	p.mu.Lock()
	p.loading = false
	p.state = Idle
	p.items = nil
	p.err = nil
	p.mu.Unlock()
}

// Items returns the published collection.
func (p *Provider[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := make([]T, len(p.items))
	copy(items, p.items)
	return items
}

// State returns the provider's current state.
func (p *Provider[T]) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Err returns the last load error, if the provider is Failed.
func (p *Provider[T]) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
