package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"support-assistant-be/pkg/store"
)

// PreviewLength bounds how much of a document is quoted in prompts and
// in the sources returned to the client.
const PreviewLength = 300

// contextLimit caps how many retrieved documents make it into the prompt.
const contextLimit = 3

// Builder assembles the single generation prompt from system instructions,
// retrieved ticket context, the conversation window and the current query.
type Builder struct {
	systemPrompt string
	query        string
	context      []store.SearchResult
	history      []store.ConversationMessage
}

// NewBuilder creates a builder. history must already be windowed and must
// not include the triggering user message (it is the current query).
func NewBuilder(systemPrompt, query string, context []store.SearchResult, history []store.ConversationMessage) *Builder {
	return &Builder{
		systemPrompt: systemPrompt,
		query:        query,
		context:      context,
		history:      history,
	}
}

func (b *Builder) Build() string {
	var prompt strings.Builder

	prompt.WriteString(b.systemPrompt)
	prompt.WriteString("\n")

	b.writeTicketContext(&prompt)
	b.writeHistory(&prompt)

	fmt.Fprintf(&prompt, "\nCurrent user question: %q\n", b.query)
	prompt.WriteString("\nProvide a helpful response based on the ticket history and your knowledge. If this is a support query, reference similar past tickets where relevant.")

	return prompt.String()
}

func (b *Builder) writeTicketContext(prompt *strings.Builder) {
	if len(b.context) == 0 {
		return
	}

	docs := b.context
	if len(docs) > contextLimit {
		docs = docs[:contextLimit]
	}

	prompt.WriteString("\nContext from support tickets:\n")
	for i, result := range docs {
		fmt.Fprintf(prompt, "\n--- Ticket %d ---\n%s\n", i+1, Preview(result.Document.Content))
	}
}

func (b *Builder) writeHistory(prompt *strings.Builder) {
	if len(b.history) == 0 {
		return
	}

	prompt.WriteString("\nPrevious conversation:\n")
	for _, msg := range b.history {
		switch msg.Role {
		case store.RoleUser:
			fmt.Fprintf(prompt, "User: %s\n", msg.Content)
		case store.RoleAssistant:
			fmt.Fprintf(prompt, "Assistant: %s\n", msg.Content)
		}
	}
}

// Preview truncates content for prompt injection and source listings. The
// cut point backs up to a rune start so multibyte text stays valid UTF-8.
func Preview(content string) string {
	if len(content) <= PreviewLength {
		return content
	}
	cut := PreviewLength
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + "..."
}
