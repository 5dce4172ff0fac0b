// Package room implements room membership, broadcasting and the
// late-join catch-up queue, together with the registry that owns all
// active rooms.
//
// A Room is a named, coded, ephemeral broadcast scope. It is created on
// first use and deleted the instant its member set becomes empty; its
// code then becomes reusable. Members are kept in insertion order
// because the catch-up protocol serves existing members round-robin.
//
// Catch-up works as a pull relay: the server never stores drawing
// history. A joiner repeatedly sends a bulk-init request; each request
// is routed to exactly one not-yet-asked member present at join time,
// which then replies with its accumulated state through the ordinary
// forwarding path. The per-joiner bookkeeping expires after a fixed
// timeout whether or not catch-up completed, so a joiner that
// disconnects mid-handshake cannot leak memory.
package room
