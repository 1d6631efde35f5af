// Package eventreader drains the kernel probe's ring buffer from
// userspace and decodes each fixed-layout record into a RawEvent. It is
// the only consumer of the ring; the daemon's event loop (internal/daemon)
// is in turn the only consumer of this package's channel.
package eventreader

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/ringbuf"
)

const (
	commLen     = 16
	filenameLen = 256
	recordSize  = 4 + commLen + filenameLen // pid(u32) + comm + filename

	pollTimeout = 100 * time.Millisecond
)

// RawEvent mirrors the kernel probe's C-layout record: pid, a null-padded
// 16-byte process short name, and a null-padded 256-byte path argument to
// the open syscall.
type RawEvent struct {
	PID      uint32
	Comm     string
	Filename string
}

// Reader wraps a cilium/ebpf ringbuf.Reader, polling with a 100ms timeout
// and decoding each delivered record.
type Reader struct {
	rb *ringbuf.Reader
}

// Open opens the ring buffer map for reading.
func Open(eventsMap *ebpf.Map) (*Reader, error) {
	rb, err := ringbuf.NewReader(eventsMap)
	if err != nil {
		return nil, fmt.Errorf("failed to open ring buffer: %w", err)
	}
	return &Reader{rb: rb}, nil
}

// Close unblocks any in-flight Read and releases the ring buffer.
func (r *Reader) Close() error {
	return r.rb.Close()
}

// Run polls the ring buffer until ctx is cancelled, sending each
// successfully decoded event on the returned channel. Records whose
// length doesn't match recordSize are silently dropped, per the
// at-most-once delivery contract. The channel is closed when Run returns.
func (r *Reader) Run(ctx context.Context) <-chan RawEvent {
	out := make(chan RawEvent)

	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if err := r.rb.SetDeadline(time.Now().Add(pollTimeout)); err != nil {
				return
			}

			record, err := r.rb.Read()
			if err != nil {
				if errors.Is(err, ringbuf.ErrClosed) {
					return
				}
				if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
					continue
				}
				continue
			}

			event, ok := decode(record.RawSample)
			if !ok {
				continue
			}

			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	var t timeouter
	return errors.As(err, &t) && t.Timeout()
}

// decode interprets a byte slice as a RawEvent only if its length is
// exactly the expected record size.
func decode(raw []byte) (RawEvent, bool) {
	if len(raw) != recordSize {
		return RawEvent{}, false
	}

	pid := binary.LittleEndian.Uint32(raw[0:4])
	comm := decodeString(raw[4 : 4+commLen])
	filename := decodeString(raw[4+commLen : 4+commLen+filenameLen])

	return RawEvent{PID: pid, Comm: comm, Filename: filename}, true
}

// decodeString replaces invalid UTF-8 with "unknown" and right-trims NUL
// padding, per the two-step decode rule the ring protocol specifies.
func decodeString(b []byte) string {
	s := strings.ToValidUTF8(string(b), "unknown")
	return strings.TrimRight(s, "\x00")
}
