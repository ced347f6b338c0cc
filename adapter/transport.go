package adapter

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/moffa90/go-pic32/protocol"
)

// Transport is the byte link to the programming adapter. Implementers
// include serialport.Port; tests use scripted in-memory transports.
//
// Read fills p with reply bytes, waiting at most timeout for data to
// arrive, and returns the number of bytes read. A timeout with no
// data is an error.
type Transport interface {
	Write(p []byte) (n int, err error)
	Read(p []byte, timeout time.Duration) (n int, err error)
	Close() error
}

// queue appends an encoded command to the outgoing packet.
func (a *Adapter) queue(payload []byte) error {
	if err := a.out.Add(payload); err != nil {
		return fmt.Errorf("queueing command 0x%02X: %w", payload[0], err)
	}
	return nil
}

// expectReply records that the queued commands will produce n more
// reply bytes on the next flush.
func (a *Adapter) expectReply(n int) {
	a.replyBytes += n
}

// flush writes the pending packet to the adapter and, if replies are
// expected, reads exactly that many raw bytes back. Replies arrive
// unframed: the adapter strips sync, length and checksum before
// forwarding the device's answer.
func (a *Adapter) flush(ctx context.Context) error {
	frame := a.out.Finalize()
	if frame == nil {
		return nil
	}
	a.cfg.logger.Tracef("adapter: write % X", frame)

	for pos := 0; pos < len(frame); {
		if err := ctx.Err(); err != nil {
			a.discard()
			return &TransportError{Op: "write", Err: err}
		}
		n, err := a.transport.Write(frame[pos:])
		if err != nil {
			a.discard()
			return &TransportError{Op: "write", Err: err}
		}
		pos += n
	}
	a.out.Reset()

	want := a.replyBytes
	a.replyBytes = 0
	a.cursor = 0
	a.inLen = 0
	if want <= 0 {
		return nil
	}

	if cap(a.in) < want {
		a.in = make([]byte, want)
	}
	for a.inLen < want {
		if err := ctx.Err(); err != nil {
			return &TransportError{Op: "read", Err: err}
		}
		n, err := a.transport.Read(a.in[a.inLen:want], a.cfg.readTimeout)
		if err != nil {
			return &TransportError{Op: "read", Err: err}
		}
		a.inLen += n
	}
	a.cfg.logger.Tracef("adapter: read % X", a.in[:a.inLen])
	return nil
}

// discard drops the pending frame and any replies it would have
// earned, so a failed flush cannot leave the session waiting on bytes
// for commands that never went out.
func (a *Adapter) discard() {
	a.out.Reset()
	a.replyBytes = 0
	a.cursor = 0
	a.inLen = 0
}

// take returns the next n bytes of the last reply.
func (a *Adapter) take(n int) ([]byte, error) {
	if a.cursor+n > a.inLen {
		return nil, &TransportError{
			Op:  "read",
			Err: fmt.Errorf("reply exhausted: need %d bytes at offset %d of %d", n, a.cursor, a.inLen),
		}
	}
	b := a.in[a.cursor : a.cursor+n]
	a.cursor += n
	return b, nil
}

// recvUint64 flushes pending commands and consumes one 8-byte shift
// reply.
func (a *Adapter) recvUint64(ctx context.Context) (uint64, error) {
	if err := a.flush(ctx); err != nil {
		return 0, err
	}
	b, err := a.take(protocol.SendReplySize)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}
