package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"support-assistant-be/pkg/store"
)

func result(content string) store.SearchResult {
	return store.SearchResult{
		Document: store.Document{Content: content, Metadata: map[string]any{}},
		Score:    1,
		Reason:   "Keyword match",
	}
}

func TestBuildIncludesAllSections(t *testing.T) {
	context := []store.SearchResult{
		result("Error Code: PAY502\nResolution: Restart the payment gateway"),
		result("Error Code: SHP101\nResolution: Reprint the label"),
	}
	history := []store.ConversationMessage{
		{Role: store.RoleUser, Content: "We keep seeing PAY502"},
		{Role: store.RoleAssistant, Content: "Can you share the full error message?"},
	}

	prompt := NewBuilder("SYSTEM INSTRUCTIONS", "How do I fix PAY502?", context, history).Build()

	for _, want := range []string{
		"SYSTEM INSTRUCTIONS",
		"Context from support tickets:",
		"--- Ticket 1 ---",
		"--- Ticket 2 ---",
		"Restart the payment gateway",
		"Previous conversation:",
		"User: We keep seeing PAY502",
		"Assistant: Can you share the full error message?",
		`Current user question: "How do I fix PAY502?"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildCapsContextAtThree(t *testing.T) {
	context := []store.SearchResult{
		result("ticket one"), result("ticket two"), result("ticket three"), result("ticket four"),
	}

	prompt := NewBuilder("sys", "q", context, nil).Build()
	if strings.Contains(prompt, "--- Ticket 4 ---") {
		t.Error("prompt includes more than three tickets")
	}
	if !strings.Contains(prompt, "--- Ticket 3 ---") {
		t.Error("prompt missing third ticket")
	}
}

func TestBuildOmitsEmptySections(t *testing.T) {
	prompt := NewBuilder("sys", "q", nil, nil).Build()
	if strings.Contains(prompt, "Context from support tickets:") {
		t.Error("empty context section rendered")
	}
	if strings.Contains(prompt, "Previous conversation:") {
		t.Error("empty history section rendered")
	}
}

func TestPreviewTruncates(t *testing.T) {
	long := strings.Repeat("x", PreviewLength+10)
	got := Preview(long)
	if len(got) != PreviewLength+3 {
		t.Errorf("preview length = %d, want %d", len(got), PreviewLength+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("preview not marked as truncated")
	}

	short := "short content"
	if Preview(short) != short {
		t.Error("short content modified")
	}
}

func TestPreviewKeepsRuneBoundaries(t *testing.T) {
	// 3-byte runes never divide 300 evenly, so a byte-offset cut would
	// land mid-rune.
	long := strings.Repeat("支付网关超时错误。", 50)
	got := Preview(long)

	if !utf8.ValidString(got) {
		t.Errorf("preview is not valid UTF-8: %q", got[len(got)-12:])
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("preview not marked as truncated")
	}
	if len(got) > PreviewLength+3 {
		t.Errorf("preview length = %d, want <= %d", len(got), PreviewLength+3)
	}
}
