package extract

import (
	"iter"
	"strings"
)

// Paragraphs yields the text of every block in document order.
func (d *Document) Paragraphs() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, blk := range d.Blocks {
			if !yield(blk.Text) {
				return
			}
		}
	}
}

// Chunks groups paragraphs into chunks of roughly chunkBytes bytes. A chunk
// is emitted once it reaches the limit, so a single oversized paragraph forms
// its own chunk. The result can be ranged over again if paras can.
func Chunks(paras iter.Seq[string], chunkBytes int) iter.Seq[string] {
	return func(yield func(string) bool) {
		var b strings.Builder
		for p := range paras {
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(p)
			if b.Len() >= chunkBytes {
				if !yield(b.String()) {
					return
				}
				b.Reset()
			}
		}
		if b.Len() > 0 {
			yield(b.String())
		}
	}
}
