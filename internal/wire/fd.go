package wire

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// dummyPayload accompanies every FD-carrying message: a single byte so
// the transport always delivers the message body and the ancillary data
// together (per the spec's §4.1 framing rule).
var dummyPayload = []byte{0}

// SendFD passes fd to the peer on conn's underlying socket, along with a
// one-byte dummy payload. The caller retains its own copy of fd; FD
// passing duplicates the descriptor, it does not transfer exclusive
// ownership.
func SendFD(conn *net.UnixConn, fd int) error {
	rights := unix.UnixRights(fd)
	raw, err := conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("wire: syscall conn: %w", err)
	}
	var sendErr error
	err = raw.Control(func(s uintptr) {
		sendErr = unix.Sendmsg(int(s), dummyPayload, rights, nil, 0)
	})
	if err != nil {
		return fmt.Errorf("wire: control: %w", err)
	}
	if sendErr != nil {
		return fmt.Errorf("wire: sendmsg: %w", sendErr)
	}
	return nil
}

// RecvFD receives one file descriptor passed by SendFD, returning it as
// an *os.File the caller owns.
func RecvFD(conn *net.UnixConn) (*os.File, error) {
	oob := make([]byte, unix.CmsgSpace(4))
	buf := make([]byte, 1)

	raw, err := conn.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("wire: syscall conn: %w", err)
	}

	var n, oobn int
	var recvErr error
	err = raw.Control(func(s uintptr) {
		n, oobn, _, _, recvErr = unix.Recvmsg(int(s), buf, oob, 0)
	})
	if err != nil {
		return nil, fmt.Errorf("wire: control: %w", err)
	}
	if recvErr != nil {
		return nil, fmt.Errorf("wire: recvmsg: %w", recvErr)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: fd transfer closed before dummy byte arrived", ErrProtocolViolation)
	}

	cmsgs, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return nil, fmt.Errorf("wire: parse control message: %w", err)
	}
	for _, c := range cmsgs {
		fds, err := unix.ParseUnixRights(&c)
		if err != nil {
			continue
		}
		if len(fds) > 0 {
			return os.NewFile(uintptr(fds[0]), "passed-fd"), nil
		}
	}
	return nil, fmt.Errorf("%w: no file descriptor in ancillary data", ErrProtocolViolation)
}
