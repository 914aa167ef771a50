// Package actor provides client-side handles to remote canisters.
//
// A canister is addressed by its Principal. An Actor exposes the canister's
// methods as local calls; the Agent underneath uses the IC agent to speak
// CBOR with Candid arguments to a replica or boundary node.
//
//	agent, err := actor.NewAgent(actor.AgentConfig{Host: "http://127.0.0.1:4943", FetchRootKey: true})
//	id := actor.MustDecode("bkyz2-fmaaa-aaaaa-qaaaq-cai")
//	a := actor.New(id, agent, actor.Interface{
//		"get_transactions": {Kind: actor.Query, Result: actor.Returns[[]string]()},
//	})
//
//	if err := a.Handshake(ctx); err != nil { ... }
//	raw, err := a.Invoke(ctx, "get_transactions")
//
// Construction is cheap and performs no I/O; the first network round trip is
// the Handshake.
package actor
