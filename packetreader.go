package mcbpx

import "io"

type PacketReader struct {
	// we use this heap-allocated read buffer since io.Read will cause
	// the buffer to escape.  the payload portion of the packet is
	// allocated on-demand since it will _always_ escape through references
	// that exist in the *Packet object.
	readHeaderBuf []byte
}

func (pr *PacketReader) ReadPacket(r io.Reader, pak *Packet) error {
	if len(pr.readHeaderBuf) != HeaderLen {
		pr.readHeaderBuf = make([]byte, HeaderLen)
	}
	headerBuf := pr.readHeaderBuf

	_, err := io.ReadFull(r, headerBuf)
	if err != nil {
		return err
	}

	extrasLen, keyLen, valueLen, err := DecodeHeader(headerBuf, pak)
	if err != nil {
		return err
	}

	if valueLen < 0 {
		return ErrInvalidBodyLength
	}

	// we intentionally put the payload in a newly allocated buffer because
	// it inevitably is going to escape to the heap through the Packet anyways.
	payloadBuf := make([]byte, extrasLen+keyLen+valueLen)
	_, err = io.ReadFull(r, payloadBuf)
	if err != nil {
		return err
	}

	payloadPos := 0

	pak.Extras = payloadBuf[payloadPos : payloadPos+extrasLen]
	payloadPos += extrasLen

	pak.Key = payloadBuf[payloadPos : payloadPos+keyLen]
	payloadPos += keyLen

	pak.Value = payloadBuf[payloadPos : payloadPos+valueLen]

	return nil
}
