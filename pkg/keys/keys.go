// Package keys decodes raw terminal input into logical key presses.
package keys

import (
	"errors"
	"fmt"
	"io"
)

// Key identifies the kind of a key press.
type Key int

// Key kinds.
const (
	KeyNone Key = iota
	KeyRune
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyEscape    // ESC followed by an unrecognized pair of bytes
	KeyInterrupt // Ctrl-C
)

const (
	esc       = 0x1b
	interrupt = 0x03
)

// Press is a single logical key press.
type Press struct {
	Key  Key
	Rune rune   // set for KeyRune
	Seq  []byte // raw bytes for KeyEscape
}

// Rune returns a KeyRune press for r.
func Rune(r rune) Press {
	return Press{Key: KeyRune, Rune: r}
}

// Is reports whether p is a KeyRune press of r.
func (p Press) Is(r rune) bool {
	return p.Key == KeyRune && p.Rune == r
}

func (p Press) String() string {
	switch p.Key {
	case KeyRune:
		return fmt.Sprintf("%q", p.Rune)
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyRight:
		return "right"
	case KeyLeft:
		return "left"
	case KeyEscape:
		return fmt.Sprintf("esc%q", p.Seq)
	case KeyInterrupt:
		return "ctrl+c"
	default:
		return "none"
	}
}

// ErrTruncated is returned when the stream ends inside an escape sequence.
var ErrTruncated = errors.New("truncated escape sequence")

// Decoder reads key presses from a raw byte stream.
type Decoder struct {
	r   io.Reader
	buf [3]byte
}

// NewDecoder returns a decoder reading from r. The reader should be a
// terminal in raw mode or any unbuffered byte source.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Next blocks until one key press is available.
//
// A lone ESC byte is followed by exactly two more reads; ESC [ A..D are the
// arrow keys and anything else is reported as KeyEscape.
func (d *Decoder) Next() (Press, error) {
	if _, err := io.ReadFull(d.r, d.buf[:1]); err != nil {
		return Press{}, err
	}

	switch b := d.buf[0]; b {
	case interrupt:
		return Press{Key: KeyInterrupt}, nil
	case esc:
		if _, err := io.ReadFull(d.r, d.buf[1:3]); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
				return Press{}, ErrTruncated
			}
			return Press{}, err
		}
		return decodeEscape(d.buf)
	default:
		return Rune(rune(b)), nil
	}
}

func decodeEscape(seq [3]byte) (Press, error) {
	if seq[1] == '[' {
		switch seq[2] {
		case 'A':
			return Press{Key: KeyUp}, nil
		case 'B':
			return Press{Key: KeyDown}, nil
		case 'C':
			return Press{Key: KeyRight}, nil
		case 'D':
			return Press{Key: KeyLeft}, nil
		}
	}
	return Press{Key: KeyEscape, Seq: append([]byte(nil), seq[:]...)}, nil
}
