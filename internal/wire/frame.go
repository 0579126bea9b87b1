package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrProtocolViolation marks a short header, impossible length, or other
// malformed frame: the caller should log it, close the connection, and
// keep running.
var ErrProtocolViolation = errors.New("wire: protocol violation")

// MaxPayload bounds a single frame's payload, guarding against a
// corrupted or hostile length field turning into an unbounded allocation.
const MaxPayload = 64 << 20

// Frame is one header+payload message.
type Frame struct {
	Type    Type
	Payload []byte
}

// header is {type, len}, both little-endian 32-bit words on the wire.
type header struct {
	Type uint32
	Len  uint32
}

// ReadFrame reads one frame, looping on short reads until the header and
// payload are fully consumed. EOF exactly at the frame boundary is
// returned as io.EOF (a clean disconnect); EOF mid-frame is wrapped as
// ErrProtocolViolation.
func ReadFrame(r io.Reader) (Frame, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, fmt.Errorf("%w: header: %v", ErrProtocolViolation, err)
	}
	if h.Len > MaxPayload {
		return Frame{}, fmt.Errorf("%w: payload length %d exceeds maximum", ErrProtocolViolation, h.Len)
	}
	payload := make([]byte, h.Len)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Frame{}, fmt.Errorf("%w: payload: %v", ErrProtocolViolation, err)
	}
	return Frame{Type: Type(h.Type), Payload: payload}, nil
}

// WriteFrame writes one frame, retrying internally (via io.Writer
// semantics) until the full buffer is flushed.
func WriteFrame(w io.Writer, f Frame) error {
	h := header{Type: uint32(f.Type), Len: uint32(len(f.Payload))}
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("wire: write header: %w", err)
	}
	if len(f.Payload) > 0 {
		if _, err := bw.Write(f.Payload); err != nil {
			return fmt.Errorf("wire: write payload: %w", err)
		}
	}
	return bw.Flush()
}

// WriteRawUint32 writes a bare 32-bit word with no frame header, used
// for the VERSION handshake reply, the attach sequence's pane and
// snapshot counts, and the length prefix of LIST_SESSIONS/DETACHKILL
// replies.
func WriteRawUint32(w io.Writer, v uint32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

// ReadRawUint32 reads a bare 32-bit word with no frame header.
func ReadRawUint32(r io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, fmt.Errorf("wire: read raw uint32: %w", err)
	}
	return v, nil
}

// EncodeUint32 and DecodeUint32 build and parse the single-int payloads
// used by RESIZE-adjacent and id-carrying messages.
func EncodeUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func DecodeUint32(b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, fmt.Errorf("%w: expected 4-byte payload, got %d", ErrProtocolViolation, len(b))
	}
	return binary.LittleEndian.Uint32(b), nil
}

// EncodeWinsize and DecodeWinsize convert a RESIZE payload.
func EncodeWinsize(w Winsize) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint16(b[0:2], w.Rows)
	binary.LittleEndian.PutUint16(b[2:4], w.Cols)
	binary.LittleEndian.PutUint16(b[4:6], w.XPixel)
	binary.LittleEndian.PutUint16(b[6:8], w.YPixel)
	return b
}

func DecodeWinsize(b []byte) (Winsize, error) {
	if len(b) < 8 {
		return Winsize{}, fmt.Errorf("%w: expected 8-byte winsize payload, got %d", ErrProtocolViolation, len(b))
	}
	return Winsize{
		Rows:   binary.LittleEndian.Uint16(b[0:2]),
		Cols:   binary.LittleEndian.Uint16(b[2:4]),
		XPixel: binary.LittleEndian.Uint16(b[4:6]),
		YPixel: binary.LittleEndian.Uint16(b[6:8]),
	}, nil
}
