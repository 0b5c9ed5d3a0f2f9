package keys

import (
	"bytes"
	"errors"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_Next(t *testing.T) {
	tests := []struct {
		input string
		want  Press
	}{
		{"\x1b[A", Press{Key: KeyUp}},
		{"\x1b[B", Press{Key: KeyDown}},
		{"\x1b[C", Press{Key: KeyRight}},
		{"\x1b[D", Press{Key: KeyLeft}},
		{"\x03", Press{Key: KeyInterrupt}},
		{"s", Rune('s')},
		{"Q", Rune('Q')},
		{"7", Rune('7')},
		{"\x1b[Z", Press{Key: KeyEscape, Seq: []byte("\x1b[Z")}},
		{"\x1bOA", Press{Key: KeyEscape, Seq: []byte("\x1bOA")}},
	}

	for _, tt := range tests {
		d := NewDecoder(bytes.NewBufferString(tt.input))
		got, err := d.Next()
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestDecoder_Sequence(t *testing.T) {
	d := NewDecoder(bytes.NewBufferString("\x1b[Dq\x1b[C1\x03"))

	var got []Press
	for {
		p, err := d.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, p)
	}

	assert.Equal(t, []Press{
		{Key: KeyLeft},
		Rune('q'),
		{Key: KeyRight},
		Rune('1'),
		{Key: KeyInterrupt},
	}, got)
}

// oneByteReader returns at most one byte per Read, like a raw terminal
// delivering a sequence across several reads.
type oneByteReader struct{ r io.Reader }

func (o oneByteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return o.r.Read(p[:1])
}

func TestDecoder_SplitReads(t *testing.T) {
	d := NewDecoder(oneByteReader{bytes.NewBufferString("\x1b[Ax")})

	p, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, KeyUp, p.Key)

	p, err = d.Next()
	require.NoError(t, err)
	assert.True(t, p.Is('x'))
}

func TestDecoder_Errors(t *testing.T) {
	_, err := NewDecoder(bytes.NewBuffer(nil)).Next()
	assert.ErrorIs(t, err, io.EOF)

	_, err = NewDecoder(bytes.NewBufferString("\x1b[")).Next()
	assert.ErrorIs(t, err, ErrTruncated)

	boom := errors.New("boom")
	_, err = NewDecoder(io.MultiReader(bytes.NewBufferString("\x1b"), errReader{boom})).Next()
	assert.ErrorIs(t, err, boom)
}

type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }

func TestFromTea(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		want Press
	}{
		{tea.KeyMsg{Type: tea.KeyUp}, Press{Key: KeyUp}},
		{tea.KeyMsg{Type: tea.KeyDown}, Press{Key: KeyDown}},
		{tea.KeyMsg{Type: tea.KeyLeft}, Press{Key: KeyLeft}},
		{tea.KeyMsg{Type: tea.KeyRight}, Press{Key: KeyRight}},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, Press{Key: KeyInterrupt}},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'u'}}, Rune('u')},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'u'}, Alt: true}, Press{}},
		{tea.KeyMsg{Type: tea.KeyTab}, Press{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FromTea(tt.msg), "msg %v", tt.msg)
	}
}

func TestPress_String(t *testing.T) {
	assert.Equal(t, "up", Press{Key: KeyUp}.String())
	assert.Equal(t, "ctrl+c", Press{Key: KeyInterrupt}.String())
	assert.Equal(t, "'o'", Rune('o').String())
}
