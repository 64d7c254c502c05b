package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCheckOut(t *testing.T) {
	in := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 10, 17, 20, 0, 0, time.UTC)

	rec := AttendanceRecord{UserID: "u1", WorkDate: DateOnly(in), CheckIn: &in}
	total, err := rec.RecordCheckOut(out, -6.2, 106.8, "Jakarta HQ")
	require.NoError(t, err)

	assert.InDelta(t, 9.333, total, 0.001)
	assert.Equal(t, "9.33", rec.TotalHours.String())
	require.True(t, rec.HasCheckedOut())
	assert.True(t, rec.CheckOut.Equal(out))
	assert.Equal(t, "Jakarta HQ", *rec.CheckOutAddress)
	assert.Equal(t, -6.2, *rec.CheckOutLatitude)
	assert.Equal(t, 106.8, *rec.CheckOutLongitude)
}

func TestRecordCheckOut_Guards(t *testing.T) {
	in := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	earlier := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)
	at := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		record  AttendanceRecord
		wantErr error
	}{
		{"no check-in", AttendanceRecord{UserID: "u1"}, ErrNotCheckedIn},
		{"already checked out", AttendanceRecord{UserID: "u1", CheckIn: &in, CheckOut: &earlier}, ErrAlreadyCheckedOut},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.record
			_, err := rec.RecordCheckOut(at, 0, 0, "x")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.record.CheckOut, rec.CheckOut, "record is left untouched")
			assert.Nil(t, rec.CheckOutAddress)
		})
	}
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("WIB", 7*60*60)
	got := DateOnly(time.Date(2026, 3, 10, 23, 59, 0, 0, loc))
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, loc), got)
}
