package chat

import (
	"fmt"
	"strings"
	"time"
)

// CodeBlock is one code excerpt attached to the next message. Blocks
// live only in the presentation layer's working set and are never
// persisted.
type CodeBlock struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	FileName  string `json:"fileName"`
	StartLine int    `json:"startLine,omitempty"`
	EndLine   int    `json:"endLine,omitempty"`
}

// Label returns a short human-readable identifier for the block.
func (b CodeBlock) Label() string {
	if b.FileName == "" {
		return fmt.Sprintf("block %d", b.ID)
	}
	if b.StartLine > 0 {
		return fmt.Sprintf("%s:%d-%d", b.FileName, b.StartLine, b.EndLine)
	}
	return b.FileName
}

// CodeContext is the working set of code blocks attached to the next
// outgoing message. Not safe for concurrent use; it belongs to a
// single presentation surface.
type CodeContext struct {
	blocks []CodeBlock
}

// Add appends a block and returns its generated id.
func (c *CodeContext) Add(code, fileName string, startLine, endLine int) int64 {
	id := time.Now().UnixMilli()
	c.blocks = append(c.blocks, CodeBlock{
		ID:        id,
		Code:      code,
		FileName:  fileName,
		StartLine: startLine,
		EndLine:   endLine,
	})
	return id
}

// Remove drops the block with the given id. Unknown ids are ignored.
func (c *CodeContext) Remove(id int64) {
	for i, b := range c.blocks {
		if b.ID == id {
			c.blocks = append(c.blocks[:i], c.blocks[i+1:]...)
			return
		}
	}
}

// Clear empties the working set. Called after each send.
func (c *CodeContext) Clear() {
	c.blocks = nil
}

// Blocks returns the attached blocks in insertion order.
func (c *CodeContext) Blocks() []CodeBlock {
	return c.blocks
}

// Join concatenates the attached code in insertion order, separated by
// blank lines, producing the context string sent with a message.
func (c *CodeContext) Join() string {
	parts := make([]string, len(c.blocks))
	for i, b := range c.blocks {
		parts[i] = b.Code
	}
	return strings.Join(parts, "\n\n")
}

// ComposePrompt builds the user-message content from free-form context
// text and the typed question. The shape is fixed: the backend sees
// the context and question as one user turn, not separate fields.
func ComposePrompt(context, message string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", context, message)
}
