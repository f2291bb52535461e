package ui

import (
	"fmt"
	"strings"

	"mytasks/internal/tasks"
)

const (
	fieldTitle = iota
	fieldSummary
	fieldState
	fieldDeadline
	fieldCount
)

// formState backs both the new-task and the edit-task form. taskID is empty
// while creating.
type formState struct {
	taskID string
	values [fieldCount]string
	index  int
}

func formFields() []string {
	return []string{"title", "summary", "state (done/not done/doing)", "deadline (YYYY-MM-DD)"}
}

func newForm(defaultState tasks.State) *formState {
	f := &formState{}
	f.values[fieldState] = string(defaultState)
	return f
}

func editForm(t tasks.Task) *formState {
	f := &formState{taskID: t.ID}
	f.values[fieldTitle] = t.Title
	f.values[fieldSummary] = t.Summary
	f.values[fieldState] = string(t.State)
	f.values[fieldDeadline] = t.Deadline.String()
	return f
}

func (f *formState) editing() bool {
	return f.taskID != ""
}

func (f *formState) currentLabel() string {
	return formFields()[f.index]
}

func (f *formState) currentValue() string {
	return f.values[f.index]
}

func (f *formState) setCurrentValue(v string) {
	f.values[f.index] = v
}

func (f *formState) last() bool {
	return f.index == fieldCount-1
}

// task converts the form into a task. The title is left for the store to
// validate.
func (f *formState) task() (tasks.Task, error) {
	t := tasks.Task{
		Title:   f.values[fieldTitle],
		Summary: strings.TrimSpace(f.values[fieldSummary]),
	}
	if v := strings.TrimSpace(f.values[fieldState]); v != "" {
		st, ok := tasks.ParseState(v)
		if !ok {
			return tasks.Task{}, fmt.Errorf("state invalid: %q", v)
		}
		t.State = st
	}
	d, err := tasks.ParseDeadline(f.values[fieldDeadline])
	if err != nil {
		return tasks.Task{}, fmt.Errorf("deadline invalid: %w", err)
	}
	t.Deadline = d
	return t, nil
}
