// Package printer owns access to the single physical receipt printer.
//
// The Dispatcher serializes jobs through a bounded FIFO queue with a
// per-job timeout; Transport implementations move directive sequences onto
// an actual device. A USB ESC/POS transport plugs in behind the same
// interface, driven by the vendor/product ids in configuration.
package printer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/mattjoyce/paperjet/internal/receipt"
)

// Transport writes one rendered job to a device. Implementations must honor
// ctx cancellation so a stuck device cannot hold the dispatcher forever.
type Transport interface {
	// Device identifies the target for logs ("console", "tcp 10.0.0.5:9100").
	Device() string
	Print(ctx context.Context, job *receipt.Job) error
}

// TransportError reports a dispatch failure with enough detail to log. It
// never propagates past the webhook boundary as a non-200 response; the
// upstream provider cannot fix print hardware.
type TransportError struct {
	Device string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("printer transport %s: %v", e.Device, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ConsoleTransport renders jobs as boxed ASCII to a writer. The default
// when no hardware is attached; also handy in development.
type ConsoleTransport struct {
	Out io.Writer
}

func (t *ConsoleTransport) Device() string { return "console" }

func (t *ConsoleTransport) Print(_ context.Context, job *receipt.Job) error {
	_, err := io.WriteString(t.Out, receipt.Preview(job))
	return err
}

// cutSequence is the raw full-cut command understood by JetDirect printers.
var cutSequence = []byte{0x1d, 0x56, 0x00}

// NetTransport prints over raw TCP (JetDirect, conventionally port 9100).
// Text directives go out as plain lines; the logo is skipped because raster
// images need the ESC/POS layer, which lives outside this transport.
type NetTransport struct {
	Address     string
	DialTimeout time.Duration
}

func (t *NetTransport) Device() string { return "tcp " + t.Address }

func (t *NetTransport) Print(ctx context.Context, job *receipt.Job) error {
	dialer := net.Dialer{Timeout: t.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.Address)
	if err != nil {
		return fmt.Errorf("dial printer: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}

	if _, err := conn.Write(encodeRaw(job)); err != nil {
		return fmt.Errorf("write job: %w", err)
	}
	return nil
}

// encodeRaw flattens a job into the byte stream a raw-mode printer accepts.
func encodeRaw(job *receipt.Job) []byte {
	width := job.Width
	if width <= 0 {
		width = 48
	}

	var buf bytes.Buffer
	for _, d := range job.Directives {
		switch d.Kind {
		case receipt.DirText:
			buf.WriteString(d.Text)
			buf.WriteByte('\n')
		case receipt.DirRule:
			buf.WriteString(strings.Repeat("-", width))
			buf.WriteByte('\n')
		case receipt.DirImage:
			// Needs the ESC/POS raster path; raw mode has no images.
		case receipt.DirFeed:
			for i := 0; i < d.Lines; i++ {
				buf.WriteByte('\n')
			}
		case receipt.DirCut:
			buf.Write(cutSequence)
		}
	}
	return buf.Bytes()
}
