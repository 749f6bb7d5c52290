// Package client implements one-shot command exchanges with a receiver:
// single GET/SET calls and the bulk snapshot query.
//
// The protocol provides no transaction IDs, so replies are correlated by
// content within a bounded time window: send, wait a settle delay for the
// device to turn around, then drain the socket until the read window
// elapses and scan the drained frames in arrival order for the first one
// matching the requested address. Every call opens a fresh connection;
// callers that need a long-lived link use package monitor instead.
package client
