package vtest_test

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/payment-frontend/pkg/store"
	"github.com/vango-dev/payment-frontend/pkg/vdom"
	"github.com/vango-dev/payment-frontend/pkg/vtest"
)

func TestRenderToString(t *testing.T) {
	node := vdom.Fragment(
		vdom.H1(vdom.Text("Hello")),
		vdom.Button(vdom.Text("World"), vdom.OnClick(func() {})),
	)

	html := vtest.RenderToString(node)
	for _, want := range []string{"<h1>Hello</h1>", `data-hid="h1"`, ">World</button>"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in %s", want, html)
		}
	}
}

func TestExpectations_Pass(t *testing.T) {
	node := vdom.H1(vdom.Text("Hello "), vdom.Text("World"))

	mockT := &testing.T{}
	vtest.ExpectContains(mockT, node, "Hello")
	vtest.ExpectNotContains(mockT, node, "Goodbye")
	vtest.ExpectElement(mockT, node, "h1")
	vtest.ExpectText(mockT, node, "h1", "Hello World")
	vtest.ExpectHTML(mockT, node, "<h1>Hello World</h1>")

	if mockT.Failed() {
		t.Error("assertions should have passed")
	}
}

// failureTB records failed assertions instead of failing the test.
type failureTB struct {
	testing.TB
	failed bool
}

func (f *failureTB) Helper()               {}
func (f *failureTB) Errorf(string, ...any) { f.failed = true }

func TestExpectations_Fail(t *testing.T) {
	node := vdom.H1(vdom.Text("Hello"))

	for name, check := range map[string]func(testing.TB){
		"element":      func(tb testing.TB) { vtest.ExpectElement(tb, node, "button") },
		"text":         func(tb testing.TB) { vtest.ExpectText(tb, node, "h1", "Goodbye") },
		"text missing": func(tb testing.TB) { vtest.ExpectText(tb, node, "button", "Connect") },
		"attribute":    func(tb testing.TB) { vtest.ExpectAttribute(tb, node, "data-hid", "h1") },
	} {
		tb := &failureTB{}
		check(tb)
		if !tb.failed {
			t.Errorf("%s: assertion should have failed", name)
		}
	}
}

func TestFakeActorWithStore(t *testing.T) {
	fake := vtest.NewFakeActor().Reply("get_transactions", []string{"a"})
	builder := vtest.NewBuilder(fake)
	st, actions := store.CreateActorStoreAndActions(builder.Build)

	if builder.Calls() != 0 {
		t.Fatal("builder ran before Connect")
	}
	if err := actions.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !st.Get().Connected || fake.Handshakes() != 1 {
		t.Fatalf("state = %+v, handshakes = %d", st.Get(), fake.Handshakes())
	}

	raw, err := actions.Call(context.Background(), "get_transactions")
	if err != nil || string(raw) != `["a"]` {
		t.Errorf("Call = %s, %v", raw, err)
	}
	if got := fake.Invocations(); len(got) != 1 || got[0] != "get_transactions" {
		t.Errorf("Invocations() = %v", got)
	}

	if _, err := actions.Call(context.Background(), "get_transaction_value", "0xabc"); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if args := fake.Args("get_transaction_value"); len(args) != 1 || args[0] != "0xabc" {
		t.Errorf("Args() = %#v", args)
	}
}

func TestFakeActorFailures(t *testing.T) {
	down := stderrors.New("replica down")
	fake := vtest.NewFakeActor().FailHandshake(down).Fail("get_transactions", down)

	if err := fake.Handshake(context.Background()); err != down {
		t.Errorf("Handshake = %v", err)
	}
	if _, err := fake.Invoke(context.Background(), "get_transactions"); err != down {
		t.Errorf("Invoke = %v", err)
	}

	b := vtest.FailingBuilder(down)
	if _, err := b.Build(); err != down || b.Calls() != 1 {
		t.Errorf("Build = %v, calls = %d", err, b.Calls())
	}
}

func TestLogRecorder(t *testing.T) {
	rec := vtest.NewLogRecorder()
	logger := rec.Logger().With("component", "test")

	logger.Info("state", "state", store.State{Connected: true})
	logger.Debug("other")

	if rec.Count("state") != 1 || len(rec.Records()) != 2 {
		t.Fatalf("records = %d", len(rec.Records()))
	}
	r := rec.Records()[0]
	v, ok := vtest.Attr(r, "state")
	if !ok || v.Kind() != slog.KindGroup {
		t.Fatalf("state attr = %v (%v)", v, ok)
	}
	if c, ok := vtest.Attr(r, "component"); !ok || c.String() != "test" {
		t.Errorf("component attr = %v", c)
	}
}
