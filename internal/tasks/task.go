// Package tasks holds the task model and the store that keeps the canonical
// task list in sync with durable storage.
package tasks

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

type State string

const (
	StateDone    State = "Done"
	StateNotDone State = "Not done"
	StateDoing   State = "Doing right now"
)

// States lists every state in the order the UI offers them.
var States = []State{StateDone, StateNotDone, StateDoing}

// ParseState matches s case-insensitively against the known states and a few
// short aliases ("done", "doing", "notdone", "todo").
func ParseState(s string) (State, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "done":
		return StateDone, true
	case "not done", "notdone", "todo":
		return StateNotDone, true
	case "doing right now", "doing":
		return StateDoing, true
	}
	return "", false
}

const dateLayout = "2006-01-02"

// Deadline is an optional calendar date. The zero value means no deadline.
type Deadline struct {
	Time  time.Time
	Valid bool
}

func NewDeadline(y int, m time.Month, d int) Deadline {
	return Deadline{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// ParseDeadline reads YYYY-MM-DD or an RFC 3339 timestamp. Blank input is no deadline.
func ParseDeadline(v string) (Deadline, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return Deadline{}, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, v)
		if tsErr != nil {
			return Deadline{}, err
		}
		t = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	}
	return Deadline{Time: t, Valid: true}, nil
}

func (d Deadline) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(dateLayout)
}

func (d Deadline) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON treats null, "" and unparsable dates as no deadline so that a
// single bad date never discards the whole list.
func (d *Deadline) UnmarshalJSON(data []byte) error {
	*d = Deadline{}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	if parsed, err := ParseDeadline(s); err == nil {
		*d = parsed
	}
	return nil
}

type Task struct {
	ID       string   `json:"id,omitempty"`
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	State    State    `json:"state"`
	Deadline Deadline `json:"deadline"`
}

func (t Task) normalized() Task {
	t.Title = strings.TrimSpace(t.Title)
	if t.State == "" {
		t.State = StateNotDone
	}
	return t
}
