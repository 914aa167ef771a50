// Package store provides an observable connection store for a canister actor.
//
// CreateActorStoreAndActions pairs a Store (the current connection state)
// with Actions (the only way to change it). The actor handle is built lazily
// by the first Connect, never at construction:
//
//	st, actions := store.CreateActorStoreAndActions(func() (actor.Actor, error) {
//	    return paymentbackend.CreateActor(paymentbackend.CanisterID())
//	})
//
//	unsubscribe := st.Subscribe(store.ObserverFunc(func(s store.State) {
//	    logger.Info("state", "state", s)
//	}))
//	defer unsubscribe()
//
//	if err := actions.Connect(ctx); err != nil { ... }
//
// # Delivery
//
// Observers receive a copy of the full State after every transition, in
// registration order and in transition order. Delivery is synchronous on the
// goroutine that made the change; if an observer itself triggers another
// transition, that transition is delivered after the current one finishes.
//
// # Rendering
//
// Components read the store through Select, passing the Watcher of the
// render pass. The watcher re-renders when the selected value changes:
//
//	connected := store.Select(st, w, store.Connected)
package store
