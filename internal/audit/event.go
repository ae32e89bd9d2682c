package audit

import (
	"context"
	"time"

	"kinfolk/pkg/requestcontext"
)

// Action names a recorded change.
type Action string

const (
	ActionPersonCreated  Action = "person_created"
	ActionPersonUpdated  Action = "person_updated"
	ActionPersonDeleted  Action = "person_deleted"
	ActionParentsSet     Action = "parents_set"
	ActionUnionCreated   Action = "union_created"
	ActionUnionDeleted   Action = "union_deleted"
	ActionReportExported Action = "report_exported"
	ActionReportShared   Action = "report_shared_download"
	ActionRelationLinked Action = "relation_linked"
)

// Event is emitted from domain services. It is transport-agnostic so the
// same value can go to Kafka or an in-memory sink.
type Event struct {
	Action    Action            `json:"action"`
	Subject   string            `json:"subject"`
	Timestamp time.Time         `json:"timestamp"`
	RequestID string            `json:"request_id,omitempty"`
	ClientIP  string            `json:"client_ip,omitempty"`
	Device    string            `json:"device,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// Enrich fills request metadata and the timestamp from ctx when unset.
func Enrich(ctx context.Context, e Event) Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = requestcontext.Now(ctx)
	}
	if e.RequestID == "" {
		e.RequestID = requestcontext.RequestID(ctx)
	}
	if e.ClientIP == "" {
		e.ClientIP = requestcontext.ClientIP(ctx)
	}
	if e.Device == "" {
		e.Device = requestcontext.Device(ctx)
	}
	return e
}
