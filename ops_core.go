package mcbpx

import "strings"

// OpsCore implements the connection-level and administrative operations
// of the protocol: liveness, flush, stats, SASL opcodes and bucket
// lifecycle.  The SASL challenge/response algorithms themselves are the
// caller's concern; only the opcodes are handled here.
type OpsCore struct {
}

func (o OpsCore) decodeError(resp *Packet) error {
	return StatusToError(resp.Status)
}

type NoopRequest struct {
}

type NoopResponse struct {
}

func (o OpsCore) Noop(d Dispatcher, req *NoopRequest, cb func(*NoopResponse, error)) (PendingOp, error) {
	return d.Dispatch(&Packet{
		Magic:  MagicReq,
		OpCode: OpCodeNoop,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeError(resp))
			return false
		}

		cb(&NoopResponse{}, nil)
		return false
	})
}

type VersionRequest struct {
}

type VersionResponse struct {
	Version string
}

func (o OpsCore) Version(d Dispatcher, req *VersionRequest, cb func(*VersionResponse, error)) (PendingOp, error) {
	return d.Dispatch(&Packet{
		Magic:  MagicReq,
		OpCode: OpCodeVersion,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeError(resp))
			return false
		}

		cb(&VersionResponse{
			Version: string(resp.Value),
		}, nil)
		return false
	})
}

type QuitRequest struct {
}

type QuitResponse struct {
}

func (o OpsCore) Quit(d Dispatcher, req *QuitRequest, cb func(*QuitResponse, error)) (PendingOp, error) {
	return d.Dispatch(&Packet{
		Magic:  MagicReq,
		OpCode: OpCodeQuit,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeError(resp))
			return false
		}

		cb(&QuitResponse{}, nil)
		return false
	})
}

type FlushRequest struct {
	// When delays the flush by the given number of seconds.
	When uint32
}

type FlushResponse struct {
}

func (o OpsCore) Flush(d Dispatcher, req *FlushRequest, cb func(*FlushResponse, error)) (PendingOp, error) {
	extrasBuf := FlushExtras{When: req.When}.Append(nil)

	return d.Dispatch(&Packet{
		Magic:  MagicReq,
		OpCode: OpCodeFlush,
		Extras: extrasBuf,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeError(resp))
			return false
		}

		cb(&FlushResponse{}, nil)
		return false
	})
}

type VerboseRequest struct {
	Level uint32
}

type VerboseResponse struct {
}

func (o OpsCore) Verbose(d Dispatcher, req *VerboseRequest, cb func(*VerboseResponse, error)) (PendingOp, error) {
	extrasBuf := TouchExtras{Expiry: req.Level}.Append(nil)

	return d.Dispatch(&Packet{
		Magic:  MagicReq,
		OpCode: OpCodeVerbose,
		Extras: extrasBuf,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeError(resp))
			return false
		}

		cb(&VerboseResponse{}, nil)
		return false
	})
}

type StatsRequest struct {
	GroupName string
}

type StatsDataResponse struct {
	Key   string
	Value string
}

type StatsActionResponse struct {
}

// Stats streams stat entries for a group.  dataCb is invoked once per
// entry; the server signals the end of the stream with an empty key,
// upon which cb fires.
func (o OpsCore) Stats(d Dispatcher, req *StatsRequest,
	dataCb func(*StatsDataResponse) error,
	cb func(*StatsActionResponse, error),
) (PendingOp, error) {
	return d.Dispatch(&Packet{
		Magic:  MagicReq,
		OpCode: OpCodeStat,
		Key:    []byte(req.GroupName),
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeError(resp))
			return false
		}

		if len(resp.Key) == 0 {
			cb(&StatsActionResponse{}, nil)
			return false
		}

		dataErr := dataCb(&StatsDataResponse{
			Key:   string(resp.Key),
			Value: string(resp.Value),
		})
		if dataErr != nil {
			cb(nil, dataErr)
			return false
		}

		return true
	})
}

type SASLListMechsRequest struct {
}

type SASLListMechsResponse struct {
	AvailableMechs []string
}

func (o OpsCore) SASLListMechs(d Dispatcher, req *SASLListMechsRequest, cb func(*SASLListMechsResponse, error)) (PendingOp, error) {
	return d.Dispatch(&Packet{
		Magic:  MagicReq,
		OpCode: OpCodeSASLListMechs,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeError(resp))
			return false
		}

		cb(&SASLListMechsResponse{
			AvailableMechs: strings.Fields(string(resp.Value)),
		}, nil)
		return false
	})
}

type SASLAuthRequest struct {
	Mechanism string
	Payload   []byte
}

type SASLAuthResponse struct {
	// NeedsMoreSteps indicates the mechanism requires a SASLStep exchange
	// before authentication completes.
	NeedsMoreSteps bool
	Payload        []byte
}

func (o OpsCore) SASLAuth(d Dispatcher, req *SASLAuthRequest, cb func(*SASLAuthResponse, error)) (PendingOp, error) {
	return o.saslExchange(d, OpCodeSASLAuth, req, cb)
}

func (o OpsCore) SASLStep(d Dispatcher, req *SASLAuthRequest, cb func(*SASLAuthResponse, error)) (PendingOp, error) {
	return o.saslExchange(d, OpCodeSASLStep, req, cb)
}

func (o OpsCore) saslExchange(d Dispatcher, opCode OpCode, req *SASLAuthRequest, cb func(*SASLAuthResponse, error)) (PendingOp, error) {
	return d.Dispatch(&Packet{
		Magic:  MagicReq,
		OpCode: opCode,
		Key:    []byte(req.Mechanism),
		Value:  req.Payload,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status == StatusAuthContinue {
			cb(&SASLAuthResponse{
				NeedsMoreSteps: true,
				Payload:        resp.Value,
			}, nil)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeError(resp))
			return false
		}

		cb(&SASLAuthResponse{
			Payload: resp.Value,
		}, nil)
		return false
	})
}

type SelectBucketRequest struct {
	BucketName string
}

type SelectBucketResponse struct {
}

func (o OpsCore) SelectBucket(d Dispatcher, req *SelectBucketRequest, cb func(*SelectBucketResponse, error)) (PendingOp, error) {
	return d.Dispatch(&Packet{
		Magic:  MagicReq,
		OpCode: OpCodeSelectBucket,
		Key:    []byte(req.BucketName),
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeError(resp))
			return false
		}

		cb(&SelectBucketResponse{}, nil)
		return false
	})
}

type CreateBucketRequest struct {
	BucketName string

	// Config is the engine configuration blob handed to the new bucket.
	Config []byte
}

type CreateBucketResponse struct {
}

func (o OpsCore) CreateBucket(d Dispatcher, req *CreateBucketRequest, cb func(*CreateBucketResponse, error)) (PendingOp, error) {
	return d.Dispatch(&Packet{
		Magic:  MagicReq,
		OpCode: OpCodeCreateBucket,
		Key:    []byte(req.BucketName),
		Value:  req.Config,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeError(resp))
			return false
		}

		cb(&CreateBucketResponse{}, nil)
		return false
	})
}

type DeleteBucketRequest struct {
	BucketName string

	// Force tears the bucket down without waiting for a clean shutdown.
	Force bool
}

type DeleteBucketResponse struct {
}

func (o OpsCore) DeleteBucket(d Dispatcher, req *DeleteBucketRequest, cb func(*DeleteBucketResponse, error)) (PendingOp, error) {
	valueBuf := []byte("force=false")
	if req.Force {
		valueBuf = []byte("force=true")
	}

	return d.Dispatch(&Packet{
		Magic:  MagicReq,
		OpCode: OpCodeDeleteBucket,
		Key:    []byte(req.BucketName),
		Value:  valueBuf,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeError(resp))
			return false
		}

		cb(&DeleteBucketResponse{}, nil)
		return false
	})
}

type ListBucketsRequest struct {
}

type ListBucketsResponse struct {
	BucketNames []string
}

func (o OpsCore) ListBuckets(d Dispatcher, req *ListBucketsRequest, cb func(*ListBucketsResponse, error)) (PendingOp, error) {
	return d.Dispatch(&Packet{
		Magic:  MagicReq,
		OpCode: OpCodeListBuckets,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeError(resp))
			return false
		}

		cb(&ListBucketsResponse{
			BucketNames: strings.Fields(string(resp.Value)),
		}, nil)
		return false
	})
}

type ExpandBucketRequest struct {
	BucketName string
	Value      []byte
}

type ExpandBucketResponse struct {
}

func (o OpsCore) ExpandBucket(d Dispatcher, req *ExpandBucketRequest, cb func(*ExpandBucketResponse, error)) (PendingOp, error) {
	return d.Dispatch(&Packet{
		Magic:  MagicReq,
		OpCode: OpCodeExpandBucket,
		Key:    []byte(req.BucketName),
		Value:  req.Value,
	}, func(resp *Packet, err error) bool {
		if err != nil {
			cb(nil, err)
			return false
		}

		if resp.Status != StatusSuccess {
			cb(nil, o.decodeError(resp))
			return false
		}

		cb(&ExpandBucketResponse{}, nil)
		return false
	})
}
