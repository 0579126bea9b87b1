package wire

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestWriteReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := Frame{Type: Command, Payload: []byte(CommandNewSession + "\x00")}
	if err := WriteFrame(&buf, want); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if got.Type != want.Type || !bytes.Equal(got.Payload, want.Payload) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestReadFrameCleanEOFAtBoundary(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader(nil))
	if !errors.Is(err, io.EOF) {
		t.Fatalf("got %v, want io.EOF", err)
	}
}

func TestReadFrameMidFrameEOFIsProtocolViolation(t *testing.T) {
	var buf bytes.Buffer
	WriteFrame(&buf, Frame{Type: Resize, Payload: EncodeWinsize(Winsize{Rows: 24, Cols: 80})})
	truncated := buf.Bytes()[:10]
	_, err := ReadFrame(bytes.NewReader(truncated))
	if !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("got %v, want ErrProtocolViolation", err)
	}
}

func TestWinsizeEncodeDecode(t *testing.T) {
	w := Winsize{Rows: 40, Cols: 120, XPixel: 0, YPixel: 0}
	got, err := DecodeWinsize(EncodeWinsize(w))
	if err != nil {
		t.Fatalf("DecodeWinsize: %v", err)
	}
	if got != w {
		t.Fatalf("got %+v, want %+v", got, w)
	}
}

func TestDecodeUint32ShortPayloadIsProtocolViolation(t *testing.T) {
	_, err := DecodeUint32([]byte{1, 2})
	if !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("got %v, want ErrProtocolViolation", err)
	}
}
