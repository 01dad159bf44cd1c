package mcbpx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestPackets(t *testing.T, paks []*Packet) []byte {
	var buf bytes.Buffer
	var pw PacketWriter
	for _, pak := range paks {
		require.NoError(t, pw.WritePacket(&buf, pak))
	}
	return buf.Bytes()
}

func TestStreamParserChunking(t *testing.T) {
	paks := []*Packet{
		{
			Magic:     MagicReq,
			OpCode:    OpCodeSet,
			Extras:    SetExtras{Flags: 1, Expiry: 2}.Append(nil),
			Key:       []byte("foo"),
			Value:     []byte("bar"),
			VbucketID: 9,
			Opaque:    42,
		},
		{
			Magic:  MagicReq,
			OpCode: OpCodeNoop,
			Opaque: 43,
		},
		{
			Magic:  MagicRes,
			OpCode: OpCodeGet,
			Status: StatusKeyNotFound,
			Opaque: 44,
		},
	}
	stream := encodeTestPackets(t, paks)

	// the same stream must parse identically regardless of how it is
	// chunked into the parser
	feedPlans := [][]int{
		{len(stream)},
	}
	var byByte []int
	for range stream {
		byByte = append(byByte, 1)
	}
	feedPlans = append(feedPlans, byByte)
	feedPlans = append(feedPlans, []int{len(stream) / 2, len(stream) - len(stream)/2})
	feedPlans = append(feedPlans, []int{7, 30, len(stream) - 37})

	for _, plan := range feedPlans {
		var parser StreamParser
		var got []*Packet

		pos := 0
		for _, n := range plan {
			parser.Feed(stream[pos : pos+n])
			pos += n

			for {
				var pak Packet
				ok, err := parser.Next(&pak)
				require.NoError(t, err)
				if !ok {
					break
				}
				cp := pak
				got = append(got, &cp)
			}
		}

		require.Len(t, got, len(paks))
		for i, want := range paks {
			assert.Equal(t, want.Magic, got[i].Magic)
			assert.Equal(t, want.OpCode, got[i].OpCode)
			assert.Equal(t, want.VbucketID, got[i].VbucketID)
			assert.Equal(t, want.Status, got[i].Status)
			assert.Equal(t, want.Opaque, got[i].Opaque)
			assert.Equal(t, want.Extras, got[i].Extras)
			assert.Equal(t, want.Key, got[i].Key)
			assert.Equal(t, want.Value, got[i].Value)
		}
		assert.Equal(t, 0, parser.Buffered())
	}
}

func TestStreamParserPayloadSurvivesFeed(t *testing.T) {
	stream := encodeTestPackets(t, []*Packet{
		{Magic: MagicReq, OpCode: OpCodeGet, Key: []byte("alpha")},
		{Magic: MagicReq, OpCode: OpCodeGet, Key: []byte("bravo")},
	})

	var parser StreamParser
	parser.Feed(stream)

	var first Packet
	ok, err := parser.Next(&first)
	require.NoError(t, err)
	require.True(t, ok)

	var second Packet
	ok, err = parser.Next(&second)
	require.NoError(t, err)
	require.True(t, ok)

	// the first packet's slices must not alias the parser buffer
	assert.Equal(t, []byte("alpha"), first.Key)
	assert.Equal(t, []byte("bravo"), second.Key)
}

func TestStreamParserBadMagic(t *testing.T) {
	hdr := make([]byte, HeaderLen)
	hdr[0] = 0x13

	var parser StreamParser
	parser.Feed(hdr)

	var pak Packet
	_, err := parser.Next(&pak)
	assert.ErrorIs(t, err, ErrUnknownMagic)
}

func TestStreamParserInvalidBodyLength(t *testing.T) {
	// declared key length exceeds the total body length
	hdr := make([]byte, HeaderLen)
	hdr[0] = uint8(MagicReq)
	hdr[1] = uint8(OpCodeGet)
	hdr[2] = 0x00
	hdr[3] = 0x10        // key length 16
	hdr[11] = 0x04       // body length 4

	var parser StreamParser
	parser.Feed(hdr)

	var pak Packet
	_, err := parser.Next(&pak)
	assert.ErrorIs(t, err, ErrInvalidBodyLength)
}

func TestPacketReaderRoundtrip(t *testing.T) {
	want := &Packet{
		Magic:     MagicReq,
		OpCode:    OpCodeSet,
		Extras:    SetExtras{Flags: 0xcafe, Expiry: 60}.Append(nil),
		Key:       []byte("doc-1"),
		Value:     []byte(`{"n":1}`),
		Datatype:  uint8(DatatypeFlagJSON),
		VbucketID: 1024,
		Opaque:    77,
		Cas:       0x0011223344556677,
	}

	var buf bytes.Buffer
	var pw PacketWriter
	require.NoError(t, pw.WritePacket(&buf, want))

	var pr PacketReader
	var got Packet
	require.NoError(t, pr.ReadPacket(&buf, &got))

	assert.Equal(t, want.Magic, got.Magic)
	assert.Equal(t, want.OpCode, got.OpCode)
	assert.Equal(t, want.Datatype, got.Datatype)
	assert.Equal(t, want.VbucketID, got.VbucketID)
	assert.Equal(t, want.Opaque, got.Opaque)
	assert.Equal(t, want.Cas, got.Cas)
	assert.Equal(t, want.Extras, got.Extras)
	assert.Equal(t, want.Key, got.Key)
	assert.Equal(t, want.Value, got.Value)
}

func TestPacketReaderShortStream(t *testing.T) {
	var pr PacketReader
	var pak Packet

	err := pr.ReadPacket(bytes.NewReader(nil), &pak)
	assert.Error(t, err)

	err = pr.ReadPacket(bytes.NewReader(make([]byte, HeaderLen-3)), &pak)
	assert.Error(t, err)
}
