// Package serial opens the byte stream the board talks over and pumps
// inbound bytes to the device loop.
//
// A port name selects the transport:
//   - "stdio": the process's stdin and stdout
//   - "pty": a fresh pseudo-terminal whose peer path is reported by Name
//   - anything else: a serial device opened at the configured baud rate
package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
	"github.com/creack/pty"
	goserial "go.bug.st/serial"
)

// Port names with special meaning.
const (
	PortStdio = "stdio"
	PortPTY   = "pty"
)

// Port is an open byte stream.
type Port interface {
	io.ReadWriteCloser
	// Name describes where the peer should connect.
	Name() string
}

// Open opens the named port.
func Open(name string, baud int) (Port, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PortStdio:
		return Stdio(), nil
	case PortPTY:
		return OpenPTY()
	default:
		return OpenDevice(name, baud)
	}
}

type stdioPort struct {
	io.Reader
	io.Writer
}

// Stdio returns a port over os.Stdin and os.Stdout. Close is a no-op.
func Stdio() Port {
	return stdioPort{Reader: os.Stdin, Writer: os.Stdout}
}

func (stdioPort) Name() string { return PortStdio }
func (stdioPort) Close() error { return nil }

// PTY is a pseudo-terminal pair. The board owns the master side; a
// companion connects to the path returned by Name.
type PTY struct {
	master *os.File
	peer   *os.File
}

// OpenPTY allocates a pseudo-terminal in raw mode so that nothing the
// board writes is echoed back to it.
func OpenPTY() (*PTY, error) {
	master, peer, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("open pty: %w", err)
	}
	if _, err := term.MakeRaw(peer.Fd()); err != nil {
		master.Close()
		peer.Close()
		return nil, fmt.Errorf("set pty raw: %w", err)
	}
	return &PTY{master: master, peer: peer}, nil
}

func (p *PTY) Read(b []byte) (int, error)  { return p.master.Read(b) }
func (p *PTY) Write(b []byte) (int, error) { return p.master.Write(b) }

// Name returns the peer device path.
func (p *PTY) Name() string { return p.peer.Name() }

// Close releases both ends.
func (p *PTY) Close() error {
	return errors.Join(p.master.Close(), p.peer.Close())
}

type devicePort struct {
	goserial.Port
	name string
}

func (d devicePort) Name() string { return d.name }

// OpenDevice opens a serial device at baud, 8N1.
func OpenDevice(name string, baud int) (Port, error) {
	p, err := goserial.Open(name, &goserial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   goserial.NoParity,
		StopBits: goserial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	return devicePort{Port: p, name: name}, nil
}

// ListPorts returns the serial devices present on the host.
func ListPorts() ([]string, error) {
	ports, err := goserial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}

// ChunkSize is the largest read the pump performs.
const ChunkSize = 256

// Pump copies r into a channel, one chunk per read, until r fails or ctx
// is done. The channel is closed on return. A read error other than
// io.EOF is logged.
func Pump(ctx context.Context, r io.Reader, logger *log.Logger) <-chan []byte {
	out := make(chan []byte, 64)
	go func() {
		defer close(out)
		buf := make([]byte, ChunkSize)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				chunk := append([]byte(nil), buf[:n]...)
				select {
				case out <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) && ctx.Err() == nil && logger != nil {
					logger.Warn("serial read failed", "err", err)
				}
				return
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	return out
}
