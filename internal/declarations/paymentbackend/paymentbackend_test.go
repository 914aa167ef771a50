package paymentbackend

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/vango-dev/payment-frontend/internal/errors"
	"github.com/vango-dev/payment-frontend/pkg/actor"
	"github.com/vango-dev/payment-frontend/pkg/store"
)

const transfer = `{"hash":"0xabc","blockNum":"0x10","from":"0x1","to":"0xb51f","value":0.5,"asset":"ETH","category":"external"}`

type request struct {
	kind   actor.RequestKind
	method string
	args   []any
}

// canister stands in for the replica at the transport boundary, answering
// like the deployed payment_backend.
type canister struct {
	requests []request
}

func (c *canister) Host() string { return "canister" }

func (c *canister) Status(context.Context) error { return nil }

func (c *canister) Request(_ context.Context, kind actor.RequestKind, _ actor.Principal, method string, args, results []any) error {
	c.requests = append(c.requests, request{kind, method, args})
	switch method {
	case MethodGetTransactions:
		*results[0].(*[]string) = []string{transfer}
	case MethodGetTransactionValue:
		if args[0].(string) != "0xabc" {
			return errors.New("E013").WithDetail("canister trapped: unknown hash")
		}
		*results[0].(*string) = transfer
	case MethodGetLatestExternalTransfer:
		*results[0].(*uint64) = args[0].(uint64) + 16
	}
	return nil
}

func TestCanisterID(t *testing.T) {
	t.Setenv("CANISTER_ID_PAYMENT_BACKEND", "")
	t.Setenv("CANISTER_ID", "")
	if got := CanisterID(); got != DefaultCanisterID {
		t.Errorf("CanisterID() = %q, want default", got)
	}

	t.Setenv("CANISTER_ID", "ryjl3-tyaaa-aaaaa-aaaba-cai")
	if got := CanisterID(); got != "ryjl3-tyaaa-aaaaa-aaaba-cai" {
		t.Errorf("CanisterID() = %q, want CANISTER_ID", got)
	}

	t.Setenv("CANISTER_ID_PAYMENT_BACKEND", "aaaaa-aa")
	if got := CanisterID(); got != "aaaaa-aa" {
		t.Errorf("CanisterID() = %q, want CANISTER_ID_PAYMENT_BACKEND", got)
	}
}

func TestCreateActorInvalidID(t *testing.T) {
	_, err := CreateActor("not-a-principal")
	if !stderrors.Is(err, errors.New("E010")) {
		t.Fatalf("expected E010, got %v", err)
	}
}

func TestCreateActorDoesNoIO(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits++ }))
	defer srv.Close()

	c, err := CreateActor(DefaultCanisterID, WithAgentConfig(actor.AgentConfig{Host: srv.URL}))
	if err != nil {
		t.Fatalf("CreateActor: %v", err)
	}
	if c.CanisterID().String() != DefaultCanisterID {
		t.Errorf("CanisterID() = %s", c.CanisterID())
	}
	if hits != 0 {
		t.Errorf("CreateActor made %d requests", hits)
	}
}

func TestCreateActorInvalidHost(t *testing.T) {
	_, err := CreateActor(DefaultCanisterID, WithAgentConfig(actor.AgentConfig{Host: "replica"}))
	if !stderrors.Is(err, errors.New("E015")) {
		t.Fatalf("expected E015, got %v", err)
	}
}

func TestMethodsOverClient(t *testing.T) {
	backend := &canister{}
	c, err := CreateActor(DefaultCanisterID, WithAgent(backend))
	if err != nil {
		t.Fatalf("CreateActor: %v", err)
	}
	m := NewMethods(c)
	ctx := context.Background()

	txs, err := m.Transactions(ctx)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("Transactions() = %v", txs)
	}
	tr, err := ParseTransfer(txs[0])
	if err != nil {
		t.Fatalf("ParseTransfer: %v", err)
	}
	if tr.Hash != "0xabc" || tr.Value != 0.5 || tr.Asset != "ETH" {
		t.Errorf("transfer = %+v", tr)
	}

	value, err := m.TransactionValue(ctx, "0xabc")
	if err != nil {
		t.Fatalf("TransactionValue: %v", err)
	}
	if value != transfer {
		t.Errorf("TransactionValue() = %q", value)
	}

	if _, err := m.TransactionValue(ctx, "0xfff"); !stderrors.Is(err, errors.New("E013")) {
		t.Errorf("expected E013, got %v", err)
	}

	block, err := m.LatestExternalTransfer(ctx, 100)
	if err != nil {
		t.Fatalf("LatestExternalTransfer: %v", err)
	}
	if block != 116 {
		t.Errorf("LatestExternalTransfer() = %d, want 116", block)
	}

	want := []request{
		{actor.Query, MethodGetTransactions, nil},
		{actor.Query, MethodGetTransactionValue, []any{"0xabc"}},
		{actor.Query, MethodGetTransactionValue, []any{"0xfff"}},
		{actor.Update, MethodGetLatestExternalTransfer, []any{uint64(100)}},
	}
	if !reflect.DeepEqual(backend.requests, want) {
		t.Errorf("requests = %#v", backend.requests)
	}
}

func TestMethodsOverStoreActions(t *testing.T) {
	st, actions := store.CreateActorStoreAndActions(
		Builder(DefaultCanisterID, WithAgent(&canister{})),
	)
	ctx := context.Background()

	if err := actions.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !st.Get().Connected {
		t.Fatal("expected connected")
	}

	block, err := NewMethods(actions).LatestExternalTransfer(ctx, 1)
	if err != nil {
		t.Fatalf("LatestExternalTransfer: %v", err)
	}
	if block != 17 {
		t.Errorf("block = %d, want 17", block)
	}
	if got := st.Get().Methods[MethodGetLatestExternalTransfer]; got.Loading || string(got.Data) != "17" {
		t.Errorf("method state = %+v", got)
	}
}

func TestMethodsBeforeConnect(t *testing.T) {
	_, actions := store.CreateActorStoreAndActions(Builder(DefaultCanisterID, WithAgent(&canister{})))
	if _, err := NewMethods(actions).Transactions(context.Background()); !stderrors.Is(err, errors.New("E014")) {
		t.Fatalf("expected E014, got %v", err)
	}
}

func TestBuilderInvalidIDFailsOnConnect(t *testing.T) {
	build := Builder("bad")
	st, actions := store.CreateActorStoreAndActions(build)
	if st.Get().Error != "" {
		t.Fatal("builder ran at construction")
	}
	if err := actions.Connect(context.Background()); err == nil {
		t.Fatal("expected Connect to fail")
	}
	if s := st.Get(); s.Connected || s.Error == "" {
		t.Errorf("state = %+v", s)
	}
}
