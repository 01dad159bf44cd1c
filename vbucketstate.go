package mcbpx

import "github.com/pkg/errors"

// VbucketState describes the replication state of a vbucket.
type VbucketState uint32

const (
	VbucketStateActive  = VbucketState(0x01)
	VbucketStateReplica = VbucketState(0x02)
	VbucketStatePending = VbucketState(0x03)
	VbucketStateDead    = VbucketState(0x04)
)

// String returns the administrative name of the state.
func (s VbucketState) String() string {
	switch s {
	case VbucketStateActive:
		return "active"
	case VbucketStateReplica:
		return "replica"
	case VbucketStatePending:
		return "pending"
	case VbucketStateDead:
		return "dead"
	}

	return "invalid"
}

// ParseVbucketState maps an administrative state name to its wire code.
// Administrative tooling sets vbucket state by name, making this mapping
// part of the public interface.
func ParseVbucketState(name string) (VbucketState, error) {
	switch name {
	case "active":
		return VbucketStateActive, nil
	case "replica":
		return VbucketStateReplica, nil
	case "pending":
		return VbucketStatePending, nil
	case "dead":
		return VbucketStateDead, nil
	}

	return 0, errors.Errorf("invalid vbucket state name: %s", name)
}
