package resolution

import (
	"fmt"
	"strings"
	"time"

	"support-assistant-be/pkg/store"
)

// Collection steps, in order. The form advances one step per user message.
const (
	StepTicketLevel = "ticket_level"
	StepCategory    = "category"
	StepProblem     = "problem"
	StepResolution  = "resolution"
)

const startPrompt = `**Add New Resolution**

I'll help you add a new ticket resolution to the knowledge base. Please provide the following information:

**Ticket Level** (L2 or L3): `

// Form is an in-flight resolution collection. One user message answers one
// step; an invalid ticket level re-prompts without advancing.
type Form struct {
	Step      string
	Data      map[string]string
	StartedAt time.Time
}

func NewForm() *Form {
	return &Form{
		Step:      StepTicketLevel,
		Data:      make(map[string]string),
		StartedAt: time.Now(),
	}
}

// StartPrompt is the message shown when a resolution form is opened.
func StartPrompt() string { return startPrompt }

// Advance consumes one user message. It returns the next prompt and, once
// the final step is answered, the completed record. A non-nil record means
// the form is finished and must be discarded by the caller.
func (f *Form) Advance(input string) (string, *Record) {
	input = strings.TrimSpace(input)

	switch f.Step {
	case StepTicketLevel:
		level := strings.ToUpper(input)
		if level != "L2" && level != "L3" {
			return "Please enter L2 or L3 for the ticket level.", nil
		}
		f.Data["Ticket Level"] = level
		f.Step = StepCategory
		return "**Category** (e.g., Shipping, Payment, API, etc.): ", nil

	case StepCategory:
		f.Data["Category"] = input
		f.Step = StepProblem
		return "**Problem Statement** (describe the issue): ", nil

	case StepProblem:
		f.Data["Problem Statement"] = input
		f.Step = StepResolution
		return "**Resolution Steps** (describe how to fix it): ", nil

	case StepResolution:
		f.Data["Resolution Steps"] = input
		category := f.Data["Category"]
		return "", &Record{
			ErrorCode:   fmt.Sprintf("%s Issue", category),
			Module:      category,
			TicketLevel: f.Data["Ticket Level"],
			Description: f.Data["Problem Statement"],
			Resolution:  f.Data["Resolution Steps"],
		}
	}

	// Unknown step means the form state was corrupted; restart.
	f.Step = StepTicketLevel
	return startPrompt, nil
}

// Record is a completed resolution ready to be committed to the shared
// knowledge base.
type Record struct {
	ErrorCode   string
	Module      string
	TicketLevel string
	Description string
	Resolution  string
}

// NewRecord normalizes a directly-submitted resolution (the non-guided API
// path), applying the same defaults the guided flow produces.
func NewRecord(errorCode, module, ticketLevel, description, resolution string) (*Record, error) {
	description = strings.TrimSpace(description)
	resolution = strings.TrimSpace(resolution)
	if description == "" || resolution == "" {
		return nil, fmt.Errorf("missing required fields: description and resolution are required")
	}

	if errorCode == "" {
		errorCode = "N/A"
	}
	if module == "" {
		module = "General"
	}
	ticketLevel = strings.ToUpper(strings.TrimSpace(ticketLevel))
	if ticketLevel != "L2" && ticketLevel != "L3" {
		ticketLevel = "L2"
	}

	return &Record{
		ErrorCode:   errorCode,
		Module:      module,
		TicketLevel: ticketLevel,
		Description: description,
		Resolution:  resolution,
	}, nil
}

// Document renders the record as a knowledge-base document. rowIndex is the
// next free index in the target session's document list.
func (r *Record) Document(rowIndex int, now time.Time) store.Document {
	content := fmt.Sprintf(
		"Ticket Level: %s\nModule: %s\nError Code: %s\nDescription: %s\nResolution: %s\nAdded: %s",
		r.TicketLevel, r.Module, r.ErrorCode, r.Description, r.Resolution, now.Format(time.RFC3339),
	)
	return store.Document{
		Content: content,
		Metadata: map[string]any{
			store.MetaRowIndex:    rowIndex,
			store.MetaSourceType:  store.SourceUserResolution,
			store.MetaFilename:    "manual_resolution",
			store.MetaTicketLevel: r.TicketLevel,
			store.MetaModule:      r.Module,
			store.MetaErrorCode:   r.ErrorCode,
			store.MetaAddedAt:     now.Format(time.RFC3339),
		},
	}
}

// Confirmation is the chat reply shown after the record is committed.
func (r *Record) Confirmation() string {
	return fmt.Sprintf(
		"**Resolution Added Successfully!**\n\n"+
			"**Ticket Level:** %s\n"+
			"**Category:** %s\n"+
			"**Problem:** %s\n"+
			"**Resolution:** %s\n\n"+
			"This resolution has been added to the **shared knowledge base** and will be available for all users to access.",
		r.TicketLevel, r.Module, r.Description, r.Resolution,
	)
}
