package mcbpx

import "io"

type PacketWriter struct {
	// we use a heap-allocated write buffer since io.Write will cause
	// the buffer to escape regardless of what we want.
	writeBuf []byte
}

func (pw *PacketWriter) WritePacket(w io.Writer, pak *Packet) error {
	payloadLen := len(pak.Extras) + len(pak.Key) + len(pak.Value)
	totalLen := HeaderLen + payloadLen

	// we intentionally guarantee that headerBuf never escapes this function
	// so this will end up not needing to actually allocate (will go on stack)
	headerBuf := make([]byte, HeaderLen)

	if err := EncodeHeader(headerBuf, pak); err != nil {
		return err
	}

	// if the writeBuf isn't big enough, do a single resize so
	// we dont incrementally increase its size on each append.
	if cap(pw.writeBuf) < totalLen {
		pw.writeBuf = make([]byte, totalLen)
	}

	// build the packet in the write buffer
	pw.writeBuf = pw.writeBuf[:0]
	pw.writeBuf = append(pw.writeBuf, headerBuf...)
	pw.writeBuf = append(pw.writeBuf, pak.Extras...)
	pw.writeBuf = append(pw.writeBuf, pak.Key...)
	pw.writeBuf = append(pw.writeBuf, pak.Value...)

	// Write guarantees that err is returned if n<len, so we can just ignore
	// n and only inspect the error to determine if something went wrong...
	_, err := w.Write(pw.writeBuf)
	if err != nil {
		return err
	}

	return nil
}
