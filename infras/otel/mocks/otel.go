package mocks

import (
	"context"
	"sync"
	"travelo/infras/otel"
)

// Otel hands out recording scopes keyed by span name. The zero value is ready to use.
type Otel struct {
	mu     sync.Mutex
	scopes map[string]*Scope
}

func (o *Otel) NewScope(ctx context.Context, _, name string) (context.Context, otel.Scope) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.scopes == nil {
		o.scopes = map[string]*Scope{}
	}

	scope := NewScope()
	o.scopes[name] = scope

	return ctx, scope
}

// Scope returns the most recent scope opened under name, or nil.
func (o *Otel) Scope(name string) *Scope {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.scopes[name]
}

func (o *Otel) Shutdown(_ context.Context) error {
	return nil
}

func NewOtel() *Otel {
	return &Otel{}
}
