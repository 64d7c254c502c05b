package audit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink_Record(t *testing.T) {
	repo := &fakeAuditRepo{}
	id := "req-1"

	NewSink(repo).Record(context.Background(), audit.Record{
		Action:      "AUTO_REJECT_LEAVE",
		EntityName:  "LeaveRequest",
		EntityID:    &id,
		OldValue:    map[string]string{"status": "pending"},
		NewValue:    "rejected",
		Description: "Automatically rejected",
		Metadata:    map[string]interface{}{"days_expired": 4},
	})

	require.Len(t, repo.entries, 1)
	e := repo.entries[0]
	assert.Nil(t, e.ActorID)
	assert.Equal(t, "AUTO_REJECT_LEAVE", e.Action)
	require.NotNil(t, e.OldValue)
	assert.JSONEq(t, `{"status":"pending"}`, *e.OldValue)
	require.NotNil(t, e.NewValue)
	assert.Equal(t, "rejected", *e.NewValue)
	assert.Equal(t, 4, e.Metadata["days_expired"])
}

func TestSink_Record_TruncatesFields(t *testing.T) {
	repo := &fakeAuditRepo{}

	NewSink(repo).Record(context.Background(), audit.Record{
		Action:      strings.Repeat("A", 80),
		EntityName:  strings.Repeat("E", 150),
		Description: strings.Repeat("é", 1200),
		NewValue:    strings.Repeat("v", 5000),
	})

	require.Len(t, repo.entries, 1)
	e := repo.entries[0]
	assert.Len(t, e.Action, audit.MaxActionLength)
	assert.True(t, strings.HasSuffix(e.Action, "..."))
	assert.Len(t, e.EntityName, audit.MaxEntityNameLength)
	assert.Equal(t, audit.MaxDescriptionLength, utf8.RuneCountInString(e.Description))
	assert.True(t, strings.HasSuffix(e.Description, "..."))
	require.NotNil(t, e.NewValue)
	assert.Len(t, *e.NewValue, audit.MaxValueLength)
	assert.Nil(t, e.OldValue)
}

func TestSink_Record_UnserializablePayload(t *testing.T) {
	repo := &fakeAuditRepo{}

	NewSink(repo).Record(context.Background(), audit.Record{
		Action:     "TEST",
		EntityName: "Test",
		OldValue:   make(chan int),
		Metadata:   map[string]interface{}{"fn": func() {}},
	})

	require.Len(t, repo.entries, 1)
	e := repo.entries[0]
	require.NotNil(t, e.OldValue)
	assert.Equal(t, Unserializable, *e.OldValue)
	assert.Equal(t, Unserializable, e.Metadata["error"])
}

func TestSink_Record_InsertFailureIsSwallowed(t *testing.T) {
	repo := &fakeAuditRepo{insertErr: errors.New("db down")}

	assert.NotPanics(t, func() {
		NewSink(repo).Record(context.Background(), audit.Record{Action: "TEST", EntityName: "Test"})
	})
	assert.Empty(t, repo.entries)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "a...", truncate("abcdef", 4))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
