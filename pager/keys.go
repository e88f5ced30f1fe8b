// Package pager shows a chapter one page at a time and scrolls it in
// response to keys.
package pager

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Key is a logical navigation key.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyHalfUp
	KeyHalfDown
	KeyQuit
)

func (k Key) String() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyHalfUp:
		return "half_up"
	case KeyHalfDown:
		return "half_down"
	case KeyQuit:
		return "quit"
	}
	return "none"
}

// ParseKey maps key names and their single letter shortcuts to keys.
// Anything unrecognized is KeyNone.
func ParseKey(s string) Key {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "k":
		return KeyUp
	case "down", "j":
		return KeyDown
	case "half_up", "u":
		return KeyHalfUp
	case "half_down", "d":
		return KeyHalfDown
	case "quit", "q":
		return KeyQuit
	}
	return KeyNone
}

// KeySource produces keys for the viewer. Implementations block until a key
// is available.
type KeySource interface {
	ReadKey() (Key, error)
}

// KeyFunc adapts a function to KeySource.
type KeyFunc func() (Key, error)

func (f KeyFunc) ReadKey() (Key, error) {
	return f()
}

// Keys returns source replaying keys in order and reporting io.EOF when
// exhausted.
func Keys(keys ...Key) KeySource {
	return KeyFunc(func() (Key, error) {
		if len(keys) == 0 {
			return KeyNone, io.EOF
		}
		k := keys[0]
		keys = keys[1:]
		return k, nil
	})
}

// TerminalKeys reads single key presses from terminal. Terminal is put into
// raw mode for the duration of every read and restored right after.
type TerminalKeys struct {
	in *os.File
}

func NewTerminalKeys(in *os.File) *TerminalKeys {
	return &TerminalKeys{in: in}
}

func (t *TerminalKeys) ReadKey() (Key, error) {
	fd := int(t.in.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return KeyNone, err
	}
	defer term.Restore(fd, old)

	return decodeKey(t.in)
}

const (
	keyCtrlC = 0x03
	keyCtrlQ = 0x11
	keyEsc   = 0x1b
)

func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	for {
		n, err := r.Read(b[:])
		if n == 1 {
			return b[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// decodeKey reads exactly as many bytes as one key press needs. Arrow keys
// come as ESC [ A and ESC [ B, page keys as ESC [ 5 ~ and ESC [ 6 ~.
func decodeKey(r io.Reader) (Key, error) {
	b, err := readByte(r)
	if err != nil {
		return KeyNone, err
	}

	switch b {
	case keyCtrlC, keyCtrlQ, 'q', 'Q':
		return KeyQuit, nil
	case 'j':
		return KeyDown, nil
	case 'k':
		return KeyUp, nil
	case 'd':
		return KeyHalfDown, nil
	case 'u':
		return KeyHalfUp, nil
	case keyEsc:
	default:
		return KeyNone, nil
	}

	if b, err = readByte(r); err != nil || b != '[' {
		return KeyNone, ignoreEOF(err)
	}
	if b, err = readByte(r); err != nil {
		return KeyNone, ignoreEOF(err)
	}
	switch b {
	case 'A':
		return KeyUp, nil
	case 'B':
		return KeyDown, nil
	case '5', '6':
		t, err := readByte(r)
		if err != nil || t != '~' {
			return KeyNone, ignoreEOF(err)
		}
		if b == '5' {
			return KeyHalfUp, nil
		}
		return KeyHalfDown, nil
	}
	return KeyNone, nil
}

// incomplete escape sequence is just an unknown key
func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// LineKeys reads one key name per line, for input which is not a terminal.
// Reader is shared with command prompt so no input gets lost between them.
type LineKeys struct {
	r *bufio.Reader
}

func NewLineKeys(r *bufio.Reader) *LineKeys {
	return &LineKeys{r: r}
}

func (l *LineKeys) ReadKey() (Key, error) {
	line, err := l.r.ReadString('\n')
	if err != nil && len(line) == 0 {
		return KeyNone, err
	}
	return ParseKey(line), nil
}
