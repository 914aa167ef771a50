package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/vango-dev/payment-frontend/internal/errors"
	"github.com/vango-dev/payment-frontend/pkg/actor"
)

// Builder constructs the actor handle. It is called lazily by Connect.
type Builder func() (actor.Actor, error)

// Actions are the operations that move a Store between states.
// They do not return the new state; observe the Store instead.
type Actions struct {
	store   *Store
	builder Builder

	mu    sync.Mutex
	actor actor.Actor
}

// CreateActorStoreAndActions returns a store in the disconnected state and
// the actions bound to it. builder is not called here.
func CreateActorStoreAndActions(builder Builder) (*Store, *Actions) {
	s := New(State{})
	return s, &Actions{store: s, builder: builder}
}

// Store returns the store these actions mutate.
func (a *Actions) Store() *Store {
	return a.store
}

// Actor returns the built actor, or nil before the first successful build.
func (a *Actions) Actor() actor.Actor {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.actor
}

// Connect builds the actor if needed and performs the replica handshake.
//
// Transitions: initializing, then connected on success or an error state on
// failure. A failed build is retried by the next Connect; a successful build
// is reused.
func (a *Actions) Connect(ctx context.Context) error {
	a.store.update(func(s *State) {
		s.Initializing = true
		s.Error = ""
	})

	act, err := a.build()
	if err == nil {
		err = act.Handshake(ctx)
	}
	if err != nil {
		a.store.update(func(s *State) {
			s.Initializing = false
			s.Connected = false
			s.Error = err.Error()
		})
		return err
	}

	a.store.update(func(s *State) {
		s.Initializing = false
		s.Initialized = true
		s.Connected = true
	})
	return nil
}

func (a *Actions) build() (actor.Actor, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.actor != nil {
		return a.actor, nil
	}
	if a.builder == nil {
		return nil, errors.New("E011").WithDetail("no actor builder configured")
	}
	act, err := a.builder()
	if err != nil {
		return nil, errors.FromError(err, "E011")
	}
	if act == nil {
		return nil, errors.New("E011").WithDetail("builder returned a nil actor")
	}
	a.actor = act
	return act, nil
}

// Call invokes a canister method on the connected actor, recording its
// progress under State.Methods[method].
func (a *Actions) Call(ctx context.Context, method string, args ...any) (json.RawMessage, error) {
	act := a.Actor()
	if act == nil || !a.store.Get().Connected {
		return nil, errors.New("E014").WithDetailf("cannot call %s", method)
	}

	a.store.update(func(s *State) {
		if s.Methods == nil {
			s.Methods = make(map[string]MethodState)
		}
		prev := s.Methods[method]
		s.Methods[method] = MethodState{Loading: true, Data: prev.Data}
	})

	raw, err := act.Invoke(ctx, method, args...)

	a.store.update(func(s *State) {
		if s.Methods == nil {
			s.Methods = make(map[string]MethodState)
		}
		if err != nil {
			s.Methods[method] = MethodState{Error: err.Error()}
			return
		}
		s.Methods[method] = MethodState{Data: raw}
	})
	return raw, err
}

// Reset returns the store to its initial state. A built actor is kept, so
// the next Connect only repeats the handshake.
func (a *Actions) Reset() {
	a.store.update(func(s *State) {
		*s = State{}
	})
}
