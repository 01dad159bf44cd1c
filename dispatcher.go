package mcbpx

// PendingOp represents an operation that has been dispatched but whose
// completion callback has not yet fired.
type PendingOp interface {
	Cancel(err error) bool
}

// DispatchCallback is invoked with each response to a dispatched packet.
// Returning true keeps the callback registered for further responses,
// which multi-response operations like stat rely on.
type DispatchCallback func(*Packet, error) bool

// Dispatcher sends a request packet to a peer and routes responses with
// a matching opaque back to the callback.  The transport behind it is
// outside the scope of this library.
type Dispatcher interface {
	Dispatch(*Packet, DispatchCallback) (PendingOp, error)
}
