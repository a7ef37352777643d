// Package relay is the device session relay: it keeps LockGuard Core
// subscribed to every registered lock and turns inbound lock messages into
// verification, commands, event records and alerts.
//
// # Subscriptions
//
// The Router tracks which per-identity topics are currently subscribed.
// A sweep lists every identity in the credential store and subscribes any
// topic not yet marked. Sweeps run at Start, after every reconnect and on a
// fixed reconciliation interval, so a failed subscribe is retried without
// any backoff logic here; reconnect backoff belongs to the MQTT client.
// Sessions are clean, so a lost connection clears the whole set.
//
// # Connection State
//
//	disconnected → connecting → connected ⇄ degraded
//
// Start fails only when the credential store cannot be listed on the first
// sweep. Everything after that is logged and retried.
//
// # Dispatch
//
// Each inbound message runs on its own goroutine, bounded by a weighted
// semaphore of relay.workers slots. Handlers never share state besides the
// Router. For a code submission the lock commands go out before anything is
// recorded; event sinks, alerts and observers are best-effort.
//
// # Usage
//
//	r, err := relay.New(relay.Options{
//	    Transport:  mqttClient,
//	    Identities: users,
//	    Verifier:   access.NewVerifier(users),
//	    Actuator:   actuator.New(mqttClient, mqttClient.QoS()),
//	    Alerter:    dispatcher,
//	    Recorder:   relay.Recorders{influx, audit.NewRecorder(events)},
//	    Workers:    cfg.Relay.Workers,
//	})
//	mqttClient.SetOnConnect(r.HandleConnected)
//	mqttClient.SetOnDisconnect(r.HandleDisconnected)
//	if err := r.Start(ctx); err != nil {
//	    return err
//	}
//	defer r.Close()
package relay
