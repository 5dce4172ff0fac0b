// Package session holds per-connection state: the user identity with
// its per-room display names, and the flood-control rate limiter.
//
// A User is created at socket open with a process-unique id and starts
// inactive. It becomes active once the client has sent its first control
// message; sending through an inactive user fails, which guards against
// broadcasts reaching half-initialized connections.
//
// The package does not know about websockets. Transports plug in via
// the Sender interface, which also lets tests observe outbound traffic
// without a network.
package session
