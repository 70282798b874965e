// Package report renders quality and audit reports as Markdown.
package report

import (
	"io"
	"strings"

	md "github.com/nao1215/markdown"
)

// Builder wraps the markdown package with the few constructs the reports use.
type Builder struct {
	md     *md.Markdown
	buffer *strings.Builder
}

// NewBuilder writes to w on Build.
func NewBuilder(w io.Writer) *Builder {
	return &Builder{md: md.NewMarkdown(w)}
}

// NewBufferBuilder collects output for String.
func NewBufferBuilder() *Builder {
	buffer := &strings.Builder{}
	return &Builder{md: md.NewMarkdown(buffer), buffer: buffer}
}

// String returns the buffered content after Build.
func (b *Builder) String() string {
	if b.buffer == nil {
		return ""
	}
	return b.buffer.String()
}

// H1 adds a level 1 header.
func (b *Builder) H1(text string) *Builder {
	b.md.H1(text).LF()
	return b
}

// H2 adds a level 2 header.
func (b *Builder) H2(text string) *Builder {
	b.md.H2(text).LF()
	return b
}

// Text adds a paragraph.
func (b *Builder) Text(text string) *Builder {
	b.md.PlainText(text).LF()
	return b
}

// Textf adds a formatted paragraph.
func (b *Builder) Textf(format string, args ...any) *Builder {
	b.md.PlainTextf(format, args...).LF()
	return b
}

// Bullets adds a bullet list.
func (b *Builder) Bullets(items ...string) *Builder {
	b.md.BulletList(items...).LF()
	return b
}

// Table adds a table.
func (b *Builder) Table(header []string, rows [][]string) *Builder {
	b.md.Table(md.TableSet{Header: header, Rows: rows}).LF()
	return b
}

// CodeBlock adds a fenced block.
func (b *Builder) CodeBlock(syntax, code string) *Builder {
	b.md.CodeBlocks(md.SyntaxHighlight(syntax), code).LF()
	return b
}

// Build flushes the document to its writer.
func (b *Builder) Build() error {
	return b.md.Build()
}

// Code formats inline code.
func Code(text string) string {
	return md.Code(text)
}

// Bold formats bold text.
func Bold(text string) string {
	return md.Bold(text)
}
