// Package editor implements the block model for post bodies: an ordered,
// mutable sequence of typed content blocks, and its HTML serialization.
package editor

import (
	"github.com/google/uuid"

	"github.com/inkpress/inkpress/internal/model"
)

// Document is the block sequence for one post draft. A single editing
// session owns a Document; it is not safe for concurrent mutation and does
// not need to be. Focus (which block is active) is caller state — the
// document only tracks structure and content.
type Document struct {
	blocks []model.Block
}

// NewDocument wraps an existing block sequence. An empty sequence is seeded
// with one empty paragraph so the never-empty invariant holds from birth.
func NewDocument(blocks []model.Block) *Document {
	d := &Document{blocks: make([]model.Block, len(blocks))}
	copy(d.blocks, blocks)
	if len(d.blocks) == 0 {
		d.blocks = append(d.blocks, model.Block{ID: newBlockID(), Type: model.BlockP})
	}
	return d
}

// Insert creates an empty block of the given type immediately after
// afterID, or at the end when afterID is not in the sequence, and returns
// the new block's id — the caller's next focus target.
func (d *Document) Insert(afterID string, typ model.BlockType) string {
	nb := model.Block{ID: newBlockID(), Type: typ}

	at := len(d.blocks)
	for i, b := range d.blocks {
		if b.ID == afterID {
			at = i + 1
			break
		}
	}

	d.blocks = append(d.blocks, model.Block{})
	copy(d.blocks[at+1:], d.blocks[at:])
	d.blocks[at] = nb
	return nb.ID
}

// Update replaces a block's content in place. Unknown ids are a no-op.
func (d *Document) Update(id, content string) {
	for i := range d.blocks {
		if d.blocks[i].ID == id {
			d.blocks[i].Content = content
			return
		}
	}
}

// Remove deletes the block with the given id and reports whether it did.
// Removing the sole remaining block is a no-op: a post's block sequence
// must never become empty.
func (d *Document) Remove(id string) bool {
	if len(d.blocks) <= 1 {
		return false
	}
	for i := range d.blocks {
		if d.blocks[i].ID == id {
			d.blocks = append(d.blocks[:i], d.blocks[i+1:]...)
			return true
		}
	}
	return false
}

// Blocks returns a copy of the sequence in rendering order.
func (d *Document) Blocks() []model.Block {
	out := make([]model.Block, len(d.blocks))
	copy(out, d.blocks)
	return out
}

func (d *Document) Len() int {
	return len(d.blocks)
}

// HTML serializes the document's current state.
func (d *Document) HTML() string {
	return Serialize(d.blocks)
}

func newBlockID() string {
	return uuid.New().String()
}
