// Package paymentbackend is the client for the payment_backend canister.
//
// It mirrors the canister's interface:
//
//	get_transactions : () -> (vec text) query
//	get_transaction_value : (text) -> (text) query
//	get_latest_external_transfer : (nat64) -> (nat64)
package paymentbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vango-dev/payment-frontend/pkg/actor"
)

// DefaultCanisterID is the id the canister receives on a fresh local replica.
const DefaultCanisterID = "bkyz2-fmaaa-aaaaa-qaaaq-cai"

// Method names.
const (
	MethodGetTransactions           = "get_transactions"
	MethodGetTransactionValue       = "get_transaction_value"
	MethodGetLatestExternalTransfer = "get_latest_external_transfer"
)

// IDL describes the canister's methods and their Candid return types.
var IDL = actor.Interface{
	MethodGetTransactions:           {Kind: actor.Query, Result: actor.Returns[[]string]()},
	MethodGetTransactionValue:       {Kind: actor.Query, Result: actor.Returns[string]()},
	MethodGetLatestExternalTransfer: {Kind: actor.Update, Result: actor.Returns[uint64]()},
}

// CanisterID returns the deployed canister id. It is read from
// CANISTER_ID_PAYMENT_BACKEND, then CANISTER_ID, then DefaultCanisterID.
func CanisterID() string {
	for _, key := range []string{"CANISTER_ID_PAYMENT_BACKEND", "CANISTER_ID"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return DefaultCanisterID
}

// Option configures CreateActor.
type Option func(*options)

type options struct {
	transport actor.Transport
	config    actor.AgentConfig
}

// WithAgent uses an existing agent, or any other transport.
func WithAgent(t actor.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithAgentConfig configures the agent created for the actor.
// Ignored when WithAgent is given.
func WithAgentConfig(config actor.AgentConfig) Option {
	return func(o *options) { o.config = config }
}

// Client is the payment_backend actor.
type Client struct {
	*actor.Handle
}

// CreateActor returns a client for the canister with the given textual id.
// No request is made until a method or Handshake is called.
func CreateActor(canisterID string, opts ...Option) (*Client, error) {
	id, err := actor.Decode(canisterID)
	if err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.transport == nil {
		agent, err := actor.NewAgent(o.config)
		if err != nil {
			return nil, err
		}
		o.transport = agent
	}
	return &Client{Handle: actor.New(id, o.transport, IDL)}, nil
}

// Call invokes method on the canister. It lets a Client back Methods.
func (c *Client) Call(ctx context.Context, method string, args ...any) (json.RawMessage, error) {
	return c.Invoke(ctx, method, args...)
}

// Builder returns a function that creates the actor on demand, for use
// with store.CreateActorStoreAndActions.
func Builder(canisterID string, opts ...Option) func() (actor.Actor, error) {
	return func() (actor.Actor, error) {
		c, err := CreateActor(canisterID, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Caller invokes canister methods by name. *store.Actions and *Client
// implement it.
type Caller interface {
	Call(ctx context.Context, method string, args ...any) (json.RawMessage, error)
}

// Methods are the canister's methods with Candid-typed arguments.
type Methods struct {
	caller Caller
}

// NewMethods returns the typed methods over c.
func NewMethods(c Caller) Methods {
	return Methods{caller: c}
}

func (m Methods) call(ctx context.Context, out any, method string, args ...any) error {
	raw, err := m.caller.Call(ctx, method, args...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s reply: %w", method, err)
	}
	return nil
}

// Transactions returns every stored transfer, each as a JSON document.
func (m Methods) Transactions(ctx context.Context) ([]string, error) {
	var out []string
	if err := m.call(ctx, &out, MethodGetTransactions); err != nil {
		return nil, err
	}
	return out, nil
}

// TransactionValue returns the stored transfer for a transaction hash.
func (m Methods) TransactionValue(ctx context.Context, hash string) (string, error) {
	var out string
	if err := m.call(ctx, &out, MethodGetTransactionValue, hash); err != nil {
		return "", err
	}
	return out, nil
}

// LatestExternalTransfer asks the canister to fetch transfers starting at
// fromBlock and returns the block of the newest one, or fromBlock when
// there are none.
func (m Methods) LatestExternalTransfer(ctx context.Context, fromBlock uint64) (uint64, error) {
	var out uint64
	if err := m.call(ctx, &out, MethodGetLatestExternalTransfer, fromBlock); err != nil {
		return 0, err
	}
	return out, nil
}

// Transfer is one external asset transfer as stored by the canister.
type Transfer struct {
	Hash     string  `json:"hash"`
	BlockNum string  `json:"blockNum"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Value    float64 `json:"value"`
	Asset    string  `json:"asset"`
	Category string  `json:"category"`
}

// ParseTransfer decodes a document returned by Transactions or
// TransactionValue.
func ParseTransfer(doc string) (Transfer, error) {
	var t Transfer
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return Transfer{}, fmt.Errorf("parse transfer: %w", err)
	}
	return t, nil
}
