// Package ids defines the opaque identifier types shared by the workflow
// and activity lifecycles: Workflow/Activity identify a registered handler
// by name, while the Run variants identify one execution instance of that
// handler. All four wrap a google/uuid.UUID and serialize as its canonical
// 36-character hyphenated form, matching the original engine's newtype
// pattern over a single UUID field.
package ids

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
)

// WorkflowID identifies a registered workflow handler.
type WorkflowID uuid.UUID

// NewWorkflowID generates a fresh random workflow id.
func NewWorkflowID() WorkflowID { return WorkflowID(uuid.New()) }

func (id WorkflowID) String() string { return uuid.UUID(id).String() }

// MarshalText implements encoding.TextMarshaler so WorkflowID serializes as
// a bare JSON string and can be used as a map key.
func (id WorkflowID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *WorkflowID) UnmarshalText(text []byte) error {
	parsed, err := uuid.ParseBytes(text)
	if err != nil {
		return fmt.Errorf("ids: invalid WorkflowID %q: %w", text, err)
	}
	*id = WorkflowID(parsed)
	return nil
}

// Value implements driver.Valuer for callers that persist ids in SQL stores.
func (id WorkflowID) Value() (driver.Value, error) { return id.String(), nil }

// WorkflowRunID identifies one execution instance of a workflow.
type WorkflowRunID uuid.UUID

// NewWorkflowRunID generates a fresh random run id.
func NewWorkflowRunID() WorkflowRunID { return WorkflowRunID(uuid.New()) }

func (id WorkflowRunID) String() string { return uuid.UUID(id).String() }

func (id WorkflowRunID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *WorkflowRunID) UnmarshalText(text []byte) error {
	parsed, err := uuid.ParseBytes(text)
	if err != nil {
		return fmt.Errorf("ids: invalid WorkflowRunID %q: %w", text, err)
	}
	*id = WorkflowRunID(parsed)
	return nil
}

// ActivityID identifies a registered activity handler.
type ActivityID uuid.UUID

// NewActivityID generates a fresh random activity id.
func NewActivityID() ActivityID { return ActivityID(uuid.New()) }

func (id ActivityID) String() string { return uuid.UUID(id).String() }

func (id ActivityID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ActivityID) UnmarshalText(text []byte) error {
	parsed, err := uuid.ParseBytes(text)
	if err != nil {
		return fmt.Errorf("ids: invalid ActivityID %q: %w", text, err)
	}
	*id = ActivityID(parsed)
	return nil
}

// ActivityRunID identifies one execution instance of an activity.
type ActivityRunID uuid.UUID

// NewActivityRunID generates a fresh random run id.
func NewActivityRunID() ActivityRunID { return ActivityRunID(uuid.New()) }

func (id ActivityRunID) String() string { return uuid.UUID(id).String() }

func (id ActivityRunID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *ActivityRunID) UnmarshalText(text []byte) error {
	parsed, err := uuid.ParseBytes(text)
	if err != nil {
		return fmt.Errorf("ids: invalid ActivityRunID %q: %w", text, err)
	}
	*id = ActivityRunID(parsed)
	return nil
}

// WorkflowName is the unique, non-empty name a workflow handler registers
// under.
type WorkflowName string

// ActivityName is the unique, non-empty name an activity handler registers
// under.
type ActivityName string
