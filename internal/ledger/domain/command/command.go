package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/crewledger/internal/platform/id"
	"golang.org/x/text/unicode/norm"
)

// SchemaVersion is the envelope version stamped on new commands.
const SchemaVersion = 1

// ErrTypeRequired indicates a missing command type.
var ErrTypeRequired = errors.New("command type is required")

// Type identifies a mutation as "<slice>/<operation>".
type Type string

// Slice returns the slice namespace of the type.
func (t Type) Slice() string {
	slice, _, _ := strings.Cut(string(t), "/")
	return slice
}

// Operation returns the operation name of the type.
func (t Type) Operation() string {
	_, op, ok := strings.Cut(string(t), "/")
	if !ok {
		return ""
	}
	return op
}

// Command captures the canonical command envelope.
type Command struct {
	Type      Type            `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
	Version   int             `json:"version"`
	UserID    string          `json:"userId,omitempty"`
	CommandID string          `json:"commandId"`
}

// Time returns the command timestamp as a time value.
func (c Command) Time() time.Time {
	return time.UnixMilli(c.Timestamp)
}

// Payload is implemented by every typed mutation payload.
type Payload interface {
	CommandType() Type
	// Target returns the id of the entity the command mutates.
	Target() string
}

// Env carries the collaborators shared by every slice of one store.
type Env struct {
	Now    func() time.Time
	NewID  id.Generator
	UserID string
	// Observe, when set, is told about every apply attempt.
	Observe func(cmd Command, err error)
}

// NewEnv returns an environment using wall-clock time and random ids.
func NewEnv() *Env {
	return &Env{Now: time.Now, NewID: id.MustNewID}
}

// ID returns a fresh entity id.
func (e *Env) ID() string {
	if e == nil || e.NewID == nil {
		return id.MustNewID()
	}
	return e.NewID()
}

func (e *Env) now() time.Time {
	if e == nil || e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// Prepare stamps payload into a new envelope.
func (e *Env) Prepare(payload Payload) (Command, error) {
	if payload == nil {
		return Command{}, ErrTypeRequired
	}
	t := payload.CommandType()
	if strings.TrimSpace(string(t)) == "" {
		return Command{}, ErrTypeRequired
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Command{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	userID := ""
	if e != nil {
		userID = strings.TrimSpace(e.UserID)
	}
	return Command{
		Type:      t,
		Payload:   data,
		Timestamp: e.now().UnixMilli(),
		Version:   SchemaVersion,
		UserID:    userID,
		CommandID: e.ID(),
	}, nil
}

// Report forwards an apply outcome to the observer.
func (e *Env) Report(cmd Command, err error) {
	if e == nil || e.Observe == nil {
		return
	}
	e.Observe(cmd, err)
}

// NormalizeName trims s and folds it to Unicode NFC so visually equal names
// compare equal.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
