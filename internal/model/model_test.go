package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhng/taskdeck/internal/model"
)

func TestTimeUnmarshalFormats(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", `"2026-08-30T10:15:30Z"`, time.Date(2026, 8, 30, 10, 15, 30, 0, time.UTC)},
		{"naive", `"2026-08-30T10:15:30"`, time.Date(2026, 8, 30, 10, 15, 30, 0, time.UTC)},
		{"naive micros", `"2026-08-30T10:15:30.500000"`, time.Date(2026, 8, 30, 10, 15, 30, 500000000, time.UTC)},
		{"date only", `"2026-08-30"`, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got model.Time
			require.NoError(t, json.Unmarshal([]byte(tc.in), &got))
			assert.True(t, got.Equal(tc.want), "got %v want %v", got.Time, tc.want)
		})
	}
}

func TestTimeUnmarshalNullAndGarbage(t *testing.T) {
	var ts model.Time
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.False(t, ts.IsSet())

	assert.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &ts))
}

func TestTimeMarshalRoundTrip(t *testing.T) {
	ts := model.NewTime(time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC))
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2026-08-30T10:00:00Z"`, string(data))

	var zero model.Time
	data, err = json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestUserUnmarshalToleratesNumericCreatedAt(t *testing.T) {
	var u model.User
	require.NoError(t, json.Unmarshal(
		[]byte(`{"id": "7", "email": "a@b.c", "name": "A", "createdAt": 7}`), &u))
	assert.Equal(t, "7", u.ID)
	assert.Equal(t, "7", u.CreatedAt)

	require.NoError(t, json.Unmarshal(
		[]byte(`{"id": "8", "email": "x@y.z", "createdAt": "2026-08-30T10:00:00"}`), &u))
	assert.Equal(t, "2026-08-30T10:00:00", u.CreatedAt)
}

func TestTaskOverdueAndDueToday(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	due := func(ts time.Time) *model.Time {
		v := model.NewTime(ts)
		return &v
	}

	yesterday := model.Task{Status: model.StatusTodo, DueDate: due(now.AddDate(0, 0, -1))}
	assert.True(t, yesterday.IsOverdue(now))
	assert.False(t, yesterday.IsDueToday(now))

	laterToday := model.Task{Status: model.StatusTodo, DueDate: due(now.Add(3 * time.Hour))}
	assert.False(t, laterToday.IsOverdue(now))
	assert.True(t, laterToday.IsDueToday(now))

	// Completed tasks are never overdue.
	done := model.Task{Status: model.StatusCompleted, DueDate: due(now.AddDate(0, 0, -5))}
	assert.False(t, done.IsOverdue(now))

	noDue := model.Task{Status: model.StatusTodo}
	assert.False(t, noDue.IsOverdue(now))
	assert.False(t, noDue.IsDueToday(now))
}

func TestValidStatusAndPriority(t *testing.T) {
	assert.True(t, model.ValidStatus(model.StatusInProgress))
	assert.False(t, model.ValidStatus("SLEEPING"))
	assert.True(t, model.ValidPriority(model.PriorityUrgent))
	assert.False(t, model.ValidPriority("ASAP"))
}
