// Package websocket owns the socket side of the sketchd server: the
// connection upgrade, the per-connection read loop, and teardown.
//
// Each connection is served by one goroutine that demultiplexes the two
// frame kinds of the wire protocol: text frames go to the control-event
// dispatcher, binary frames to the position-forwarding path. A small
// companion goroutine sends keepalive pings.
//
// All faults of the error taxonomy are per-message: they are logged and
// the message is dropped while the connection stays open. Anything
// uncategorized aborts the read loop, which runs the same teardown as a
// clean close: the user leaves every room it was in, each of those
// rooms broadcasts a disconnect event, and empty rooms are released.
//
// There is no send queue. Writes are serialized by a mutex and sends to
// peers are fire and forget; a peer whose socket is not ready simply
// misses the frame.
package websocket
