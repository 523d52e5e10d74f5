package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeContextJoin(t *testing.T) {
	var ctx CodeContext
	assert.Equal(t, "", ctx.Join())

	ctx.Add("func a() {}", "a.go", 1, 1)
	ctx.Add("func b() {}", "b.go", 10, 12)

	assert.Equal(t, "func a() {}\n\nfunc b() {}", ctx.Join(), "blocks join in insertion order with a blank line between")
}

func TestCodeContextRemove(t *testing.T) {
	var ctx CodeContext
	id := ctx.Add("one", "one.txt", 0, 0)
	ctx.Add("two", "two.txt", 0, 0)

	ctx.Remove(id)
	require.Len(t, ctx.Blocks(), 1)
	assert.Equal(t, "two", ctx.Join())

	// Unknown ids are ignored.
	ctx.Remove(99)
	assert.Len(t, ctx.Blocks(), 1)
}

func TestCodeContextClear(t *testing.T) {
	var ctx CodeContext
	ctx.Add("x", "", 0, 0)
	ctx.Clear()
	assert.Empty(t, ctx.Blocks())
	assert.Equal(t, "", ctx.Join())
}

func TestCodeBlockLabel(t *testing.T) {
	assert.Equal(t, "main.go:3-9", CodeBlock{ID: 1, FileName: "main.go", StartLine: 3, EndLine: 9}.Label())
	assert.Equal(t, "main.go", CodeBlock{ID: 1, FileName: "main.go"}.Label())
	assert.Equal(t, "block 1", CodeBlock{ID: 1}.Label())
}

func TestComposePrompt(t *testing.T) {
	assert.Equal(t, "Context:\n\n\nQuestion: hello", ComposePrompt("", "hello"))
	assert.Equal(t, "Context:\ncode here\n\nQuestion: explain", ComposePrompt("code here", "explain"))
}

func TestConversationAppendAndLastAssistant(t *testing.T) {
	c := Conversation{ID: "1"}
	assert.Equal(t, "", c.LastAssistant())

	c.Append(RoleUser, "q").Append(RoleAssistant, "a1")
	c.Append(RoleUser, "q2").Append(RoleAssistant, "a2")
	assert.Equal(t, "a2", c.LastAssistant())
	assert.Len(t, c.Messages, 4)
}

func TestStreamChunkDeltaContent(t *testing.T) {
	chunk := StreamChunk{Choices: []Choice{{Delta: &Message{Content: "hi"}}}}
	assert.Equal(t, "hi", chunk.DeltaContent())

	assert.Equal(t, "", (&StreamChunk{}).DeltaContent())
	assert.Equal(t, "", (&StreamChunk{Choices: []Choice{{}}}).DeltaContent())
}
