package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/audit"
)

// Unserializable replaces a value or metadata payload that cannot be encoded
const Unserializable = "[unserializable]"

const ellipsis = "..."

type sink struct {
	repo audit.AuditRepository
}

// NewSink returns a best-effort audit sink. Failures are logged, never returned.
func NewSink(repo audit.AuditRepository) audit.Sink {
	return &sink{repo: repo}
}

// Record implements audit.Sink.
func (s *sink) Record(ctx context.Context, rec audit.Record) {
	entry := audit.Entry{
		ActorID:     rec.ActorID,
		Action:      truncate(rec.Action, audit.MaxActionLength),
		EntityName:  truncate(rec.EntityName, audit.MaxEntityNameLength),
		EntityID:    rec.EntityID,
		OldValue:    serialize(rec.OldValue, rec.Action, "old_value"),
		NewValue:    serialize(rec.NewValue, rec.Action, "new_value"),
		Description: truncate(rec.Description, audit.MaxDescriptionLength),
		Metadata:    sanitizeMetadata(rec.Metadata, rec.Action),
	}

	if _, err := s.repo.Insert(ctx, entry); err != nil {
		slog.Error("Audit: failed to append entry",
			"action", entry.Action,
			"entity", entry.EntityName,
			"entity_id", deref(entry.EntityID),
			"error", err,
		)
	}
}

// serialize encodes v as JSON, strings are kept verbatim, then caps the result.
func serialize(v interface{}, action, field string) *string {
	if v == nil {
		return nil
	}

	var out string
	switch val := v.(type) {
	case string:
		out = val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			slog.Warn("Audit: value is not serializable, storing placeholder", "action", action, "field", field, "error", err)
			out = Unserializable
		} else {
			out = string(b)
		}
	}

	out = truncate(out, audit.MaxValueLength)
	return &out
}

func sanitizeMetadata(m map[string]interface{}, action string) map[string]interface{} {
	if m == nil {
		return nil
	}
	if _, err := json.Marshal(m); err != nil {
		slog.Warn("Audit: metadata is not serializable, storing placeholder", "action", action, "error", err)
		return map[string]interface{}{"error": Unserializable}
	}
	return m
}

// truncate caps s at limit runes, ending with an ellipsis when cut
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= len(ellipsis) {
		return string(runes[:limit])
	}
	return string(runes[:limit-len(ellipsis)]) + ellipsis
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
