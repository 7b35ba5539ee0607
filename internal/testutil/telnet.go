package testutil

import (
	"bytes"
	"net"
	"testing"
	"time"
)

const iac = 255

// TelnetClient drives a server the way a player's Telnet client would.
// Output read past a match is kept for the next ReadUntil.
type TelnetClient struct {
	t       *testing.T
	conn    net.Conn
	pending []byte
}

// NewTelnetClient dials addr and closes the connection when the test ends.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("dialing %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &TelnetClient{t: t, conn: conn}
}

// ReadUntil returns server output up to and including the first occurrence
// of substr, with Telnet commands removed. It fails the test on timeout.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	want := []byte(substr)
	chunk := make([]byte, 1024)
	for {
		if i := bytes.Index(c.pending, want); i >= 0 {
			end := i + len(want)
			out := string(c.pending[:end])
			c.pending = append(c.pending[:0:0], c.pending[end:]...)
			return out
		}
		n, err := c.conn.Read(chunk)
		c.pending = append(c.pending, stripCommands(chunk[:n])...)
		if err != nil {
			c.t.Fatalf("waiting for %q: have %q: %v", substr, c.pending, err)
		}
	}
}

// Send writes text and a CRLF.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	c.SendRaw(append([]byte(text), '\r', '\n'))
}

// SendRaw writes b unchanged, for escape keys and Telnet commands.
func (c *TelnetClient) SendRaw(b []byte) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := c.conn.Write(b); err != nil {
		c.t.Fatalf("sending %q: %v", b, err)
	}
}

// Close disconnects the client.
func (c *TelnetClient) Close() {
	c.conn.Close()
}

// stripCommands drops the three-byte option commands servers send. Longer
// sequences are not used by the server under test.
func stripCommands(b []byte) []byte {
	out := b[:0:0]
	for i := 0; i < len(b); i++ {
		if b[i] == iac && i+2 < len(b) {
			i += 2
			continue
		}
		out = append(out, b[i])
	}
	return out
}
