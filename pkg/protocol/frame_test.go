package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFrameEncodeDecode(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
	}{
		{"empty_payload", Frame{Type: FrameAck, Payload: []byte{}}},
		{"patches", Frame{Type: FramePatches, Payload: []byte{0x01, 0x02, 0x03}}},
		{"snapshot", Frame{Type: FramePatches, Flags: FlagSnapshot, Payload: []byte("tree")}},
		{"hello", Frame{Type: FrameHello, Payload: []byte{0x01, 0x00, 0x00, 0x00}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := tc.frame.Encode()
			if len(data) != FrameHeaderSize+len(tc.frame.Payload) {
				t.Fatalf("len = %d", len(data))
			}
			got, err := DecodeFrame(data)
			if err != nil {
				t.Fatalf("DecodeFrame: %v", err)
			}
			if got.Type != tc.frame.Type || got.Flags != tc.frame.Flags {
				t.Errorf("header = %v/%#x, want %v/%#x", got.Type, got.Flags, tc.frame.Type, tc.frame.Flags)
			}
			if !bytes.Equal(got.Payload, tc.frame.Payload) {
				t.Errorf("payload = %x, want %x", got.Payload, tc.frame.Payload)
			}
		})
	}
}

func TestFrameHeaderLayout(t *testing.T) {
	f := &Frame{Type: FrameError, Flags: FlagSnapshot, Payload: make([]byte, 0x010203)}
	h := f.Encode()[:FrameHeaderSize]
	want := []byte{0x05, 0x01, 0x00, 0x01, 0x02, 0x03}
	if !bytes.Equal(h, want) {
		t.Fatalf("header = %x, want %x", h, want)
	}
	if !f.Flags.Has(FlagSnapshot) {
		t.Error("Has(FlagSnapshot) = false")
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	valid := NewFrame(FrameAck, []byte{0x07}).Encode()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short_header", valid[:3], io.ErrUnexpectedEOF},
		{"short_payload", valid[:FrameHeaderSize], io.ErrUnexpectedEOF},
		{"trailing", append(append([]byte{}, valid...), 0x00), ErrTrailingBytes},
		{"bad_type", []byte{0x01, 0, 0, 0, 0, 0}, ErrInvalidFrameType},
		{"too_large", []byte{0x02, 0, 0x7F, 0xFF, 0xFF, 0xFF}, ErrFrameTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeFrame(tc.data); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestReadWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	frames := []*Frame{
		NewFrame(FrameControl, EncodeControl(&Control{Type: ControlPing, Timestamp: 42})),
		NewFrame(FrameAck, EncodeAck(&Ack{LastSeq: 9})),
	}
	for _, f := range frames {
		if err := WriteFrame(&buf, f); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	for _, want := range frames {
		got, err := ReadFrame(&buf)
		if err != nil {
			t.Fatalf("ReadFrame: %v", err)
		}
		if got.Type != want.Type || !bytes.Equal(got.Payload, want.Payload) {
			t.Errorf("frame = %v %x, want %v %x", got.Type, got.Payload, want.Type, want.Payload)
		}
	}
	if _, err := ReadFrame(&buf); err != io.EOF {
		t.Errorf("ReadFrame on empty reader = %v, want io.EOF", err)
	}
}

func TestWriteFrameTooLarge(t *testing.T) {
	f := NewFrame(FramePatches, make([]byte, MaxPayloadSize+1))
	if err := WriteFrame(io.Discard, f); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("err = %v, want ErrFrameTooLarge", err)
	}
}
