package mcbpx

type pendingOpNoop struct{}

func (pendingOpNoop) Cancel(err error) bool {
	return false
}

// testDispatcher records dispatched packets and answers each one by
// invoking the callback with the result of replyFn.
type testDispatcher struct {
	packets []*Packet
	replyFn func(req *Packet) (*Packet, error)
}

func (d *testDispatcher) Dispatch(pak *Packet, cb DispatchCallback) (PendingOp, error) {
	d.packets = append(d.packets, pak)
	cb(d.replyFn(pak))
	return pendingOpNoop{}, nil
}

// testStreamDispatcher answers a single request with a sequence of
// response packets, invoking the callback until it unregisters.
type testStreamDispatcher struct {
	packets []*Packet
	replies []*Packet
}

func (d *testStreamDispatcher) Dispatch(pak *Packet, cb DispatchCallback) (PendingOp, error) {
	d.packets = append(d.packets, pak)
	for _, resp := range d.replies {
		if !cb(resp, nil) {
			break
		}
	}
	return pendingOpNoop{}, nil
}
