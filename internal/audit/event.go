// Package audit provides an append-only audit log for CSP operations.
//
// Audit entries are JSON lines chained with SHA-256 hashes so tampering is
// evident. The log records what was signed, verified, installed or deleted
// and by whom; it never records file contents.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// EventType represents the category of audit event.
type EventType string

const (
	EventCertInstalled EventType = "CERT_INSTALLED"
	EventCertDeleted   EventType = "CERT_DELETED"
	EventSign          EventType = "SIGN"
	EventVerify        EventType = "VERIFY"
)

// Result represents the outcome of an audited operation.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

// Actor represents who performed the action.
type Actor struct {
	Type string `json:"type"` // "user" or "service"
	ID   string `json:"id"`
	Host string `json:"host,omitempty"`
}

// Object represents what was acted upon.
type Object struct {
	Type       string `json:"type"` // "certificate", "file", "signature"
	Thumbprint string `json:"thumbprint,omitempty"`
	Store      string `json:"store,omitempty"`
	Path       string `json:"path,omitempty"`
}

// Context provides additional details about the operation.
type Context struct {
	Tool   string `json:"tool,omitempty"`   // "certmgr" or "cryptcp"
	Code   string `json:"code,omitempty"`   // tool result code
	Signer string `json:"signer,omitempty"` // verified signer identity
	Reason string `json:"reason,omitempty"` // failure reason
}

// Event is a single audit log entry.
type Event struct {
	EventType EventType `json:"event_type"`
	Timestamp string    `json:"timestamp"` // RFC3339 UTC
	Actor     Actor     `json:"actor"`
	Object    Object    `json:"object"`
	Context   Context   `json:"context,omitempty"`
	Result    Result    `json:"result"`
	HashPrev  string    `json:"hash_prev"`
	Hash      string    `json:"hash"`
}

// NewEvent creates an audit event stamped with the current time and the
// invoking user.
func NewEvent(eventType EventType, result Result) *Event {
	hostname, _ := os.Hostname()
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME") // Windows
	}
	if username == "" {
		username = "unknown"
	}

	return &Event{
		EventType: eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Actor: Actor{
			Type: "user",
			ID:   username,
			Host: hostname,
		},
		Result: result,
	}
}

// WithObject sets the object field.
func (e *Event) WithObject(obj Object) *Event {
	e.Object = obj
	return e
}

// WithContext sets the context field.
func (e *Event) WithContext(ctx Context) *Event {
	e.Context = ctx
	return e
}

// Validate checks that required fields are present.
func (e *Event) Validate() error {
	if e.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if e.Timestamp == "" {
		return fmt.Errorf("timestamp is required")
	}
	if e.Actor.Type == "" || e.Actor.ID == "" {
		return fmt.Errorf("actor type and id are required")
	}
	if e.Result == "" {
		return fmt.Errorf("result is required")
	}
	return nil
}

// canonicalJSON serializes the event without its own Hash field; the hash
// covers everything else, including HashPrev.
func (e *Event) canonicalJSON() ([]byte, error) {
	type eventForHash struct {
		EventType EventType `json:"event_type"`
		Timestamp string    `json:"timestamp"`
		Actor     Actor     `json:"actor"`
		Object    Object    `json:"object"`
		Context   Context   `json:"context,omitempty"`
		Result    Result    `json:"result"`
		HashPrev  string    `json:"hash_prev"`
	}

	return json.Marshal(eventForHash{
		EventType: e.EventType,
		Timestamp: e.Timestamp,
		Actor:     e.Actor,
		Object:    e.Object,
		Context:   e.Context,
		Result:    e.Result,
		HashPrev:  e.HashPrev,
	})
}

// calculateHash computes the chained hash of a canonical event.
func calculateHash(canonical []byte, prevHash string) string {
	h := sha256.New()
	h.Write(canonical)
	h.Write([]byte(prevHash))
	return HashPrefix + hex.EncodeToString(h.Sum(nil))
}
