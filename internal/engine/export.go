package engine

import (
	"bytes"
	"fmt"

	"github.com/arcanaland/cardsmith/internal/deck"
)

// File is an attachment produced by Download or Export.
type File struct {
	Name    string
	Content []byte
}

// readableFile lists every card with its id, one per line.
func readableFile(d *deck.Deck) File {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Deck %s (not usable for playing)\n", d.Name)
	for id, c := range d.Cards() {
		fmt.Fprintf(&buf, "%d: [%s] %s\n", id, c.Category(), c.Text())
	}
	return File{Name: d.Name + ".txt", Content: buf.Bytes()}
}

// exportFile writes "text<TAB>CATEGORY" lines in id order.
func exportFile(d *deck.Deck) File {
	var buf bytes.Buffer
	for _, c := range d.Cards() {
		fmt.Fprintf(&buf, "%s\t%s\n", c.Text(), c.Category())
	}
	return File{Name: d.Name + ".tsv", Content: buf.Bytes()}
}
