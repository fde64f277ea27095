package shell

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrInterrupt is returned by ReadLine when the user pressed Ctrl-C.
var ErrInterrupt = errors.New("interrupted")

// LineReader yields input lines. It returns io.EOF at end of input and
// ErrInterrupt when the current line was abandoned.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// NewReader picks a terminal line editor when in is a TTY and a plain
// buffered reader otherwise.
func NewReader(in io.Reader, out io.Writer, names func() []string) LineReader {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return NewTermReader(f, out, names)
	}
	return NewPlainReader(in, out)
}

// PlainReader reads newline-terminated lines, writing the prompt first.
type PlainReader struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPlainReader returns a reader over in that prints prompts to out.
func NewPlainReader(in io.Reader, out io.Writer) *PlainReader {
	return &PlainReader{in: bufio.NewReader(in), out: out}
}

// ReadLine implements LineReader. A final line without a newline is still
// returned; io.EOF follows on the next call.
func (r *PlainReader) ReadLine(prompt string) (string, error) {
	if r.out != nil {
		io.WriteString(r.out, prompt)
	}
	line, err := r.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// TermReader is a line editor over a terminal. The terminal is in raw mode
// only while a line is being read, so commands see a normal TTY.
type TermReader struct {
	in    *os.File
	input *interruptReader
	t     *term.Terminal
	names func() []string
}

// NewTermReader returns a line editor over the TTY in, completing the first
// word from names.
func NewTermReader(in *os.File, out io.Writer, names func() []string) *TermReader {
	r := &TermReader{in: in, input: &interruptReader{r: in}, names: names}
	r.t = term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{r.input, out}, "")
	r.t.History = &history{max: 500}
	r.t.AutoCompleteCallback = func(line string, pos int, key rune) (string, int, bool) {
		if key != '\t' {
			return "", 0, false
		}
		return Complete(line, pos, r.names())
	}
	return r
}

// ReadLine implements LineReader.
func (r *TermReader) ReadLine(prompt string) (string, error) {
	fd := int(r.in.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return "", err
	}
	defer term.Restore(fd, state)

	if w, h, err := term.GetSize(fd); err == nil {
		r.t.SetSize(w, h)
	}
	r.t.SetPrompt(prompt)
	r.input.interrupted = false

	line, err := r.t.ReadLine()
	if r.input.interrupted {
		return "", ErrInterrupt
	}
	return line, err
}

// interruptReader turns Ctrl-C into "end of line, erase line, enter" so the
// editor abandons the current line and returns, and records that it did.
type interruptReader struct {
	r           io.Reader
	interrupted bool
	pending     []byte
}

func (ir *interruptReader) Read(p []byte) (int, error) {
	if len(ir.pending) > 0 {
		n := copy(p, ir.pending)
		ir.pending = ir.pending[n:]
		return n, nil
	}
	n, err := ir.r.Read(p)
	for i := 0; i < n; i++ {
		if p[i] != 0x03 {
			continue
		}
		ir.interrupted = true
		// Drop everything after the interrupt; the line is being abandoned.
		ir.pending = []byte{0x15, '\r'}
		p[i] = 0x05
		return i + 1, err
	}
	return n, err
}

// history keeps non-blank lines, most recent first.
type history struct {
	entries []string
	max     int
}

func (h *history) Add(entry string) {
	if strings.TrimSpace(entry) == "" {
		return
	}
	if len(h.entries) > 0 && h.entries[0] == entry {
		return
	}
	h.entries = append([]string{entry}, h.entries...)
	if len(h.entries) > h.max {
		h.entries = h.entries[:h.max]
	}
}

func (h *history) Len() int { return len(h.entries) }

func (h *history) At(idx int) string { return h.entries[idx] }
