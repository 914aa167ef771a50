package vtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/vango-dev/payment-frontend/pkg/actor"
)

// FakeActor is a scriptable actor.Actor. The zero value is not usable;
// use NewFakeActor.
type FakeActor struct {
	mu           sync.Mutex
	id           actor.Principal
	handshakeErr error
	replies      map[string]json.RawMessage
	errs         map[string]error
	handshakes   int
	invocations  []string
	args         map[string][]any
}

// NewFakeActor returns a healthy fake for the anonymous principal.
func NewFakeActor() *FakeActor {
	return &FakeActor{
		id:      actor.AnonymousPrincipal,
		replies: make(map[string]json.RawMessage),
		errs:    make(map[string]error),
		args:    make(map[string][]any),
	}
}

// WithID sets the canister id the fake reports.
func (f *FakeActor) WithID(id actor.Principal) *FakeActor {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.id = id
	return f
}

// FailHandshake makes every Handshake return err. Pass nil to recover.
func (f *FakeActor) FailHandshake(err error) *FakeActor {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handshakeErr = err
	return f
}

// Reply makes method return v encoded as JSON.
func (f *FakeActor) Reply(method string, v any) *FakeActor {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("vtest: encode reply for %s: %v", method, err))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[method] = raw
	delete(f.errs, method)
	return f
}

// Fail makes method return err.
func (f *FakeActor) Fail(method string, err error) *FakeActor {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[method] = err
	return f
}

// CanisterID implements actor.Actor.
func (f *FakeActor) CanisterID() actor.Principal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

// Handshake implements actor.Actor.
func (f *FakeActor) Handshake(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handshakes++
	return f.handshakeErr
}

// Invoke implements actor.Actor. Methods without a scripted reply return null.
func (f *FakeActor) Invoke(_ context.Context, method string, args ...any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invocations = append(f.invocations, method)
	f.args[method] = args
	if err := f.errs[method]; err != nil {
		return nil, err
	}
	if raw, ok := f.replies[method]; ok {
		return raw, nil
	}
	return json.RawMessage(`null`), nil
}

// Handshakes returns how many times Handshake was called.
func (f *FakeActor) Handshakes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handshakes
}

// Invocations returns the invoked method names in order.
func (f *FakeActor) Invocations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.invocations...)
}

// Args returns the arguments of the last invocation of method.
func (f *FakeActor) Args(method string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.args[method]
}

// Builder counts how often a connection builder runs.
type Builder struct {
	mu    sync.Mutex
	actor actor.Actor
	err   error
	calls int
}

// NewBuilder returns a builder that yields a.
func NewBuilder(a actor.Actor) *Builder {
	return &Builder{actor: a}
}

// FailingBuilder returns a builder that always fails with err.
func FailingBuilder(err error) *Builder {
	return &Builder{err: err}
}

// Build has the store.Builder signature.
func (b *Builder) Build() (actor.Actor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return b.actor, nil
}

// Calls returns how many times Build ran.
func (b *Builder) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}
