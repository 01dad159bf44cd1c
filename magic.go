package mcbpx

type Magic uint8

const (
	// MagicReq indicates that the packet is a request.
	MagicReq = Magic(0x80)

	// MagicRes indicates that the packet is a response.
	MagicRes = Magic(0x81)
)

func (m Magic) IsRequest() bool {
	return m == MagicReq
}

func (m Magic) IsResponse() bool {
	return m == MagicRes
}
