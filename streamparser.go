package mcbpx

// StreamParser incrementally assembles packets from arbitrarily sized
// chunks delivered by a transport.  It moves between two states: waiting
// for a complete header, then waiting for the body the header declared.
// Messages range from a bare header to multi-megabyte values, so a
// caller must be able to read in small chunks without knowing message
// sizes up front.
//
// A parser holds no connection state beyond its byte buffer; if the
// owning connection is torn down mid-message the parser can simply be
// discarded.
type StreamParser struct {
	buf []byte
}

// Feed appends transport bytes to the parse buffer.
func (p *StreamParser) Feed(data []byte) {
	p.buf = append(p.buf, data...)
}

// Buffered returns the number of bytes held but not yet consumed.
func (p *StreamParser) Buffered() int {
	return len(p.buf)
}

// Next decodes the next complete packet into pak.  It returns false when
// more bytes are needed, leaving the buffer untouched so the caller can
// feed further chunks and retry.  Framing errors are fatal to the stream.
func (p *StreamParser) Next(pak *Packet) (bool, error) {
	if len(p.buf) < HeaderLen {
		return false, nil
	}

	extrasLen, keyLen, valueLen, err := DecodeHeader(p.buf[:HeaderLen], pak)
	if err != nil {
		return false, err
	}

	if valueLen < 0 {
		return false, ErrInvalidBodyLength
	}

	payloadLen := extrasLen + keyLen + valueLen
	totalLen := HeaderLen + payloadLen
	if len(p.buf) < totalLen {
		return false, nil
	}

	// the payload is copied out so the packet slices stay valid once the
	// parse buffer is reused for the next message.
	payloadBuf := make([]byte, payloadLen)
	copy(payloadBuf, p.buf[HeaderLen:totalLen])

	payloadPos := 0

	pak.Extras = payloadBuf[payloadPos : payloadPos+extrasLen]
	payloadPos += extrasLen

	pak.Key = payloadBuf[payloadPos : payloadPos+keyLen]
	payloadPos += keyLen

	pak.Value = payloadBuf[payloadPos : payloadPos+valueLen]

	remaining := copy(p.buf, p.buf[totalLen:])
	p.buf = p.buf[:remaining]

	return true, nil
}
