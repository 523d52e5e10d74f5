// Package termsink implements the live-update sink for a terminal:
// the CLI's stand-in for the editor webview.
package termsink

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"chatbox/src/chat"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Sink renders engine notifications to a terminal writer.
type Sink struct {
	w io.Writer

	// streaming tracks whether the assistant prefix has been printed
	// for the current exchange.
	streaming bool

	// announceLists controls whether pushed conversation-list updates
	// are printed. The store pushes the list after every mutation;
	// inside the chat loop that would interleave with the transcript,
	// so the REPL keeps the pushes silent and only the list commands
	// turn them on.
	announceLists bool
}

// New creates a terminal sink writing to w.
func New(w io.Writer) *Sink {
	return &Sink{w: w}
}

// AnnounceLists enables printing of pushed conversation-list updates.
func (s *Sink) AnnounceLists(on bool) {
	s.announceLists = on
}

// OnUserEcho prints the user's message back to the transcript.
func (s *Sink) OnUserEcho(text string) {
	fmt.Fprintf(s.w, "%s %s\n", userStyle.Render("You:"), text)
}

// OnStreamChunk prints one chunk of assistant output as it arrives.
func (s *Sink) OnStreamChunk(text string) {
	if !s.streaming {
		fmt.Fprintf(s.w, "%s ", assistantStyle.Render("LLM:"))
		s.streaming = true
	}
	fmt.Fprint(s.w, text)
}

// EndStream terminates the in-progress assistant line. Called by the
// REPL once an exchange finishes either way.
func (s *Sink) EndStream() {
	if s.streaming {
		fmt.Fprintln(s.w)
		s.streaming = false
	}
}

// OnModelsChanged lists the configured models.
func (s *Sink) OnModelsChanged(models []chat.ModelConfig) {
	if len(models) == 0 {
		fmt.Fprintln(s.w, mutedStyle.Render("no models configured"))
		return
	}
	for _, m := range models {
		fmt.Fprintf(s.w, "%s  %s\n", m.Name, mutedStyle.Render(m.ModelID))
	}
}

// OnConversationListChanged lists stored conversations.
func (s *Sink) OnConversationListChanged(conversations []chat.Conversation) {
	if !s.announceLists {
		return
	}
	for _, c := range conversations {
		title := firstLine(c)
		fmt.Fprintf(s.w, "%s  %s\n", c.ID, mutedStyle.Render(title))
	}
}

// OnConversationLoaded replays a stored conversation.
func (s *Sink) OnConversationLoaded(conversation chat.Conversation) {
	for _, m := range conversation.Messages {
		switch m.Role {
		case chat.RoleUser:
			fmt.Fprintf(s.w, "%s %s\n", userStyle.Render("You:"), m.Content)
		case chat.RoleAssistant:
			fmt.Fprintf(s.w, "%s %s\n", assistantStyle.Render("LLM:"), m.Content)
		}
	}
}

// OnError prints a user-visible failure message.
func (s *Sink) OnError(message string) {
	s.EndStream()
	fmt.Fprintln(s.w, errorStyle.Render("error: "+message))
}

// RenderCodeBlock prints an attached code block with syntax
// highlighting, used for the context working-set preview.
func (s *Sink) RenderCodeBlock(block chat.CodeBlock) {
	fmt.Fprintln(s.w, mutedStyle.Render("-- "+block.Label()))
	fmt.Fprintln(s.w, highlight(block.Code, block.FileName))
}

// highlight applies chroma syntax highlighting for terminal output,
// falling back to the plain text when the code cannot be tokenized.
func highlight(code, fileName string) string {
	lexer := lexers.Match(fileName)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

func firstLine(c chat.Conversation) string {
	for _, m := range c.Messages {
		if m.Role == chat.RoleUser {
			line := m.Content
			// The stored user turn embeds the context block; show the
			// question part when present.
			if i := strings.LastIndex(line, "Question: "); i >= 0 {
				line = line[i+len("Question: "):]
			}
			if j := strings.IndexByte(line, '\n'); j >= 0 {
				line = line[:j]
			}
			return line
		}
	}
	return "(empty)"
}
