package telnet

import (
	"bufio"
	"net"
	"sync"
	"time"
)

// Telnet command and option bytes (RFC 854, 857, 858).
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	SE   byte = 240

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
)

// Input bytes with meaning to the line reader.
const (
	ESC byte = 27
	BS  byte = 8
	DEL byte = 127
)

// MaxLineLength caps a single input line. Further bytes up to the line end
// are discarded.
const MaxLineLength = 256

// Conn is one Telnet client. Reads are line oriented with protocol bytes
// stripped; writes are serialized.
type Conn struct {
	// ID identifies the connection in logs.
	ID string

	raw    net.Conn
	reader *bufio.Reader

	readTimeout  time.Duration
	writeTimeout time.Duration
	afterCR      bool

	wmu       sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// NewConn wraps raw. Zero timeouts disable the corresponding deadline.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 1024),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate offers to suppress go-ahead so clients send whole lines without
// waiting on GA.
func (c *Conn) Negotiate() error {
	return c.write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine reads one line of text without its terminator.
func (c *Conn) ReadLine() (string, error) {
	line, _, err := c.ReadInput()
	return line, err
}

// ReadInput reads one line and reports whether a bare escape key was pressed
// on it. Telnet commands, cursor key sequences and other control bytes are
// dropped; backspace removes the previous byte.
//
// Postcondition: len(line) <= MaxLineLength.
func (c *Conn) ReadInput() (line string, escaped bool, err error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	buf := make([]byte, 0, 64)
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return string(buf), escaped, err
		}
		// CR LF and CR NUL end one line, not two.
		if c.afterCR {
			c.afterCR = false
			if b == '\n' || b == 0 {
				continue
			}
		}
		switch {
		case b == IAC:
			if err := c.skipCommand(); err != nil {
				return string(buf), escaped, err
			}
		case b == ESC:
			key, err := c.skipKeySequence()
			if err != nil {
				return string(buf), escaped, err
			}
			escaped = escaped || !key
		case b == '\n':
			return string(buf), escaped, nil
		case b == '\r':
			c.afterCR = true
			return string(buf), escaped, nil
		case b == BS || b == DEL:
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
			}
		case b < ' ' && b != '\t':
			// other control bytes carry no text
		default:
			if len(buf) < MaxLineLength {
				buf = append(buf, b)
			}
		}
	}
}

// skipCommand consumes the rest of a Telnet command after IAC.
func (c *Conn) skipCommand() error {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return err
	}
	switch cmd {
	case WILL, WONT, DO, DONT:
		_, err = c.reader.ReadByte()
		return err
	case SB:
		var prev byte
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if prev == IAC && b == SE {
				return nil
			}
			// IAC IAC inside a subnegotiation is a literal 255.
			if prev == IAC && b == IAC {
				b = 0
			}
			prev = b
		}
	}
	return nil
}

// skipKeySequence consumes a CSI or SS3 sequence following ESC. It reports
// false when the ESC stood alone.
func (c *Conn) skipKeySequence() (bool, error) {
	if c.reader.Buffered() == 0 {
		return false, nil
	}
	next, err := c.reader.Peek(1)
	if err != nil {
		return false, nil
	}
	switch next[0] {
	case '[':
		_, _ = c.reader.ReadByte()
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return true, err
			}
			if b >= 0x40 && b <= 0x7e {
				return true, nil
			}
		}
	case 'O':
		_, _ = c.reader.ReadByte()
		_, err := c.reader.ReadByte()
		return true, err
	}
	return false, nil
}

// ReadPassword reads a line with client echo turned off, then restores echo
// and moves the cursor to a new line.
func (c *Conn) ReadPassword() (string, error) {
	if err := c.write([]byte{IAC, WILL, OptEcho}); err != nil {
		return "", err
	}
	line, err := c.ReadLine()
	_ = c.write([]byte{IAC, WONT, OptEcho, '\r', '\n'})
	return line, err
}

// WriteLine writes text followed by CRLF.
func (c *Conn) WriteLine(text string) error {
	b := make([]byte, 0, len(text)+2)
	b = append(b, text...)
	return c.write(append(b, '\r', '\n'))
}

// Write sends data unchanged.
func (c *Conn) Write(data []byte) error {
	return c.write(data)
}

// WritePrompt writes prompt without a line ending.
func (c *Conn) WritePrompt(prompt string) error {
	return c.write([]byte(prompt))
}

func (c *Conn) write(p []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(p)
	return err
}

// Close closes the connection. Later calls return the first result.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() { c.closeErr = c.raw.Close() })
	return c.closeErr
}

// RemoteAddr returns the client's address as a string.
func (c *Conn) RemoteAddr() string {
	if a := c.raw.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}
