package compliance

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/docstudio/internal/models"
)

// DefaultChunkSize is the chunk bound, in characters, used when none is configured.
const DefaultChunkSize = 1200

var paragraphBreak = regexp.MustCompile(`\n[ \t\r]*\n`)

// Chunker groups paragraphs into chunks of bounded size.
type Chunker struct {
	maxSize int
}

// NewChunker creates a chunker with the given bound in characters.
func NewChunker(maxSize int) *Chunker {
	if maxSize <= 0 {
		maxSize = DefaultChunkSize
	}
	return &Chunker{maxSize: maxSize}
}

// Split returns the chunk texts of text in order. A paragraph is appended to the
// running chunk while the running length plus the paragraph length stays below the
// bound; otherwise the running chunk is closed and the paragraph starts the next one.
// Paragraphs are never split, so a chunk may exceed the bound by one paragraph.
// Whitespace-only input yields no chunks.
func (c *Chunker) Split(text string) []string {
	var chunks []string
	var current strings.Builder
	size := 0
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
		size = 0
	}
	for _, para := range paragraphBreak.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		n := utf8.RuneCountInString(para)
		if size+n >= c.maxSize {
			flush()
		}
		current.WriteString(para)
		current.WriteString("\n\n")
		size += n + 2
	}
	flush()
	return chunks
}

// Chunk is Split with positions attached.
func (c *Chunker) Chunk(text string) []models.Chunk {
	texts := c.Split(text)
	chunks := make([]models.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = models.Chunk{Index: i, Text: t, SizeBound: c.maxSize}
	}
	return chunks
}
