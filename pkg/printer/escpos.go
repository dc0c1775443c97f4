package printer

import (
	"bytes"
	"fmt"
	"strings"
)

// ESC/POS command constants
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Text alignment
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Font size
const (
	FontNormal = 0x00
	FontDouble = 0x11 // Double width + double height
	FontWide   = 0x10 // Double width only
	FontTall   = 0x01 // Double height only
)

// Common paper widths in characters.
const (
	Width58mm = 32
	Width80mm = 48
)

// Document builds a receipt either as an ESC/POS byte stream for thermal
// printers or as plain text. In plain mode control commands are dropped and
// alignment is done with spaces.
type Document struct {
	buf   bytes.Buffer
	width int
	plain bool
	align int
}

// NewDocument creates an ESC/POS document with the given character width.
func NewDocument(charWidth int) *Document {
	d := &Document{width: normalizeWidth(charWidth)}
	d.Init()
	return d
}

// NewTextDocument creates a plain text document with the given character width.
func NewTextDocument(charWidth int) *Document {
	return &Document{width: normalizeWidth(charWidth), plain: true}
}

func normalizeWidth(w int) int {
	if w <= 0 {
		return Width58mm
	}
	return w
}

func (d *Document) Width() int { return d.width }

func (d *Document) command(b ...byte) {
	if !d.plain {
		d.buf.Write(b)
	}
}

// Init sends the ESC @ (initialize printer) command.
func (d *Document) Init() *Document {
	d.align = AlignLeft
	d.command(ESC, '@')
	return d
}

func (d *Document) LineFeed() *Document {
	d.buf.WriteByte(LF)
	return d
}

func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

// SetAlign sets text alignment: AlignLeft, AlignCenter, AlignRight.
func (d *Document) SetAlign(align int) *Document {
	d.align = align
	d.command(ESC, 'a', byte(align))
	return d
}

func (d *Document) SetBold(on bool) *Document {
	b := byte(0)
	if on {
		b = 1
	}
	d.command(ESC, 'E', b)
	return d
}

// SetFontSize sets the character size. Use FontNormal, FontDouble, FontWide, or FontTall.
func (d *Document) SetFontSize(size byte) *Document {
	d.command(GS, '!', size)
	return d
}

// Text writes a line of text followed by a line feed.
func (d *Document) Text(s string) *Document {
	if d.plain {
		s = d.pad(s)
	}
	d.buf.WriteString(s)
	d.buf.WriteByte(LF)
	return d
}

func (d *Document) pad(s string) string {
	free := d.width - len(s)
	if free <= 0 {
		return s
	}
	switch d.align {
	case AlignCenter:
		return strings.Repeat(" ", free/2) + s
	case AlignRight:
		return strings.Repeat(" ", free) + s
	}
	return s
}

func (d *Document) TextF(format string, args ...interface{}) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Separator prints a full-width separator line.
func (d *Document) Separator(char byte) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte(LF)
	return d
}

// KeyValue prints a left-aligned key and right-aligned value on the same line.
func (d *Document) KeyValue(key, value string) *Document {
	d.spread(key, value)
	return d
}

// ItemLine prints "2x Widget" with the total right-aligned. Names too long
// for the line are truncated.
func (d *Document) ItemLine(qty int, name, total string) *Document {
	prefix := fmt.Sprintf("%dx %s", qty, name)
	if max := d.width - len(total) - 1; max > 0 && len(prefix) > max {
		prefix = prefix[:max]
	}
	d.spread(prefix, total)
	return d
}

func (d *Document) spread(left, right string) {
	spaces := d.width - len(left) - len(right)
	if spaces < 1 {
		spaces = 1
	}
	d.buf.WriteString(left)
	d.buf.WriteString(strings.Repeat(" ", spaces))
	d.buf.WriteString(right)
	d.buf.WriteByte(LF)
}

// Cut sends the paper cut command (full cut).
func (d *Document) Cut() *Document {
	d.command(GS, 'V', 0x00)
	return d
}

func (d *Document) PartialCut() *Document {
	d.command(GS, 'V', 0x01)
	return d
}

func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

func (d *Document) String() string {
	return d.buf.String()
}

// Reset clears the buffer and reinitializes the document.
func (d *Document) Reset() *Document {
	d.buf.Reset()
	d.Init()
	return d
}
