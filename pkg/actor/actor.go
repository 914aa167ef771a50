package actor

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/vango-dev/payment-frontend/internal/errors"
)

// Actor is a client-side proxy for a remote canister.
type Actor interface {
	// CanisterID returns the canister this actor talks to.
	CanisterID() Principal

	// Handshake verifies the replica is reachable.
	Handshake(ctx context.Context) error

	// Invoke calls a canister method and returns its reply as JSON.
	Invoke(ctx context.Context, method string, args ...any) (json.RawMessage, error)
}

// Method describes one canister method, the way a generated IDL factory
// does.
type Method struct {
	Kind RequestKind

	// Result returns a pointer to a zero value of the method's Candid
	// return type. Nil means the method returns nothing.
	Result func() any
}

// Interface maps method names to their descriptions.
type Interface map[string]Method

// Returns is a Method.Result for a method returning T.
func Returns[T any]() func() any {
	return func() any { return new(T) }
}

// Handle is the Transport-backed Actor.
type Handle struct {
	canister  Principal
	transport Transport
	iface     Interface
}

// New returns an actor for canister. No I/O is performed.
func New(canister Principal, transport Transport, iface Interface) *Handle {
	if iface == nil {
		iface = Interface{}
	}
	return &Handle{canister: canister, transport: transport, iface: iface}
}

// CanisterID implements Actor.
func (h *Handle) CanisterID() Principal {
	return h.canister
}

// Handshake implements Actor.
func (h *Handle) Handshake(ctx context.Context) error {
	return h.transport.Status(ctx)
}

// Invoke implements Actor. The Candid reply is decoded into the method's
// result type and re-encoded as JSON.
func (h *Handle) Invoke(ctx context.Context, method string, args ...any) (json.RawMessage, error) {
	m, ok := h.iface[method]
	if !ok {
		return nil, errors.New("E012").WithDetailf("%s on %s", method, h.canister)
	}

	var results []any
	if m.Result != nil {
		results = []any{m.Result()}
	}
	if err := h.transport.Request(ctx, m.Kind, h.canister, method, args, results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return json.RawMessage(`null`), nil
	}

	raw, err := json.Marshal(reflect.ValueOf(results[0]).Elem().Interface())
	if err != nil {
		return nil, errors.New("E013").WithDetailf("encode reply of %s", method).Wrap(err)
	}
	return raw, nil
}

// InvokeInto calls method on a and decodes the reply into out.
func InvokeInto(ctx context.Context, a Actor, out any, method string, args ...any) error {
	raw, err := a.Invoke(ctx, method, args...)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.New("E013").WithDetailf("decode reply of %s", method).Wrap(err)
	}
	return nil
}
