package v1

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCallRecord_Validation(t *testing.T) {
	now := time.Now().UnixMilli()

	tests := []struct {
		name    string
		record  CallRecord
		wantErr string
	}{
		{
			name:   "valid record",
			record: CallRecord{ID: "c1", Number: "5551234567", Type: CallIncoming, Timestamp: now, Duration: 30},
		},
		{
			name:   "private number is still a valid record",
			record: CallRecord{ID: "c2", Number: "-1", Type: CallMissed, Timestamp: now},
		},
		{
			name:    "missing id",
			record:  CallRecord{Number: "5551234567", Type: CallIncoming, Timestamp: now},
			wantErr: "id is required",
		},
		{
			name:    "unknown type",
			record:  CallRecord{ID: "c3", Number: "5551234567", Type: "forwarded", Timestamp: now},
			wantErr: "unknown call type",
		},
		{
			name:    "missing timestamp",
			record:  CallRecord{ID: "c4", Number: "5551234567", Type: CallOutgoing},
			wantErr: "timestamp is required",
		},
		{
			name:    "negative duration",
			record:  CallRecord{ID: "c5", Number: "5551234567", Type: CallOutgoing, Timestamp: now, Duration: -1},
			wantErr: "duration must be >= 0",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.record.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestCallRecord_JSONShape(t *testing.T) {
	var rec CallRecord
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "c1",
		"number": "(555) 123-4567",
		"type": "voicemail",
		"timestamp": 1737417600000,
		"duration": 12,
		"cached_name": "Alice"
	}`), &rec))

	require.Equal(t, CallVoicemail, rec.Type)
	require.Equal(t, "Alice", rec.CachedName)
	require.Equal(t, time.Date(2025, 1, 21, 0, 0, 0, 0, time.UTC), rec.Time())
}
