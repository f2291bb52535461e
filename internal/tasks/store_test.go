package tasks

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"mytasks/internal/storage"
)

const key = "tasks"

// newTestStore opens a store over an in-memory KV with predictable ids.
func newTestStore(t *testing.T, kv *storage.Memory) *Store {
	t.Helper()
	s, err := Open(kv, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return s
}

func mustCreate(t *testing.T, s *Store, task Task) []Task {
	t.Helper()
	list, err := s.Create(task)
	if err != nil {
		t.Fatalf("create %q: %v", task.Title, err)
	}
	return list
}

func titles(list []Task) string {
	parts := make([]string, len(list))
	for i, t := range list {
		parts[i] = t.Title
	}
	return strings.Join(parts, ",")
}

func sameTask(a, b Task) bool {
	return a.ID == b.ID && a.Title == b.Title && a.Summary == b.Summary &&
		a.State == b.State && a.Deadline.String() == b.Deadline.String()
}

func TestOpenValidation(t *testing.T) {
	if _, err := Open(nil, key); err == nil {
		t.Fatal("expected error for nil storage")
	}
	if _, err := Open(storage.NewMemory(), ""); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestCreateScenario(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())

	list := mustCreate(t, s, Task{Title: "Buy milk", State: StateNotDone})
	if len(list) != 1 || list[0].Title != "Buy milk" {
		t.Fatalf("unexpected list after create: %+v", list)
	}

	list, err := s.Create(Task{Title: "", Summary: "ignored"})
	if !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("empty title should not change the list, got %d tasks", len(list))
	}

	list, err = s.Delete(0)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %+v", list)
	}
}

func TestCreateRejectsBlankTitleWithoutWriting(t *testing.T) {
	kv := storage.NewMemory()
	s := newTestStore(t, kv)
	for _, title := range []string{"", "   ", "\t\n"} {
		if _, err := s.Create(Task{Title: title}); !errors.Is(err, ErrEmptyTitle) {
			t.Fatalf("title %q: expected ErrEmptyTitle, got %v", title, err)
		}
	}
	if _, ok, _ := kv.Get(key); ok {
		t.Fatal("rejected creates must not write storage")
	}
}

func TestCreateAppendsAndDefaultsState(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	mustCreate(t, s, Task{Title: "a", State: StateDone})
	list := mustCreate(t, s, Task{Title: "  b  "})

	if len(list) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(list))
	}
	last := list[1]
	if last.Title != "b" {
		t.Fatalf("expected trimmed title, got %q", last.Title)
	}
	if last.State != StateNotDone {
		t.Fatalf("expected default state %q, got %q", StateNotDone, last.State)
	}
	if last.ID != "id-2" {
		t.Fatalf("expected new id, got %q", last.ID)
	}
}

func TestUpdateInPlace(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	mustCreate(t, s, Task{Title: "a"})
	mustCreate(t, s, Task{Title: "b"})
	mustCreate(t, s, Task{Title: "c"})

	list, err := s.Update(1, Task{Title: "B", Summary: "edited", State: StateDoing, Deadline: NewDeadline(2024, 3, 1)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := titles(list); got != "a,B,c" {
		t.Fatalf("unexpected order %s", got)
	}
	if list[1].ID != "id-2" {
		t.Fatalf("update must keep id, got %q", list[1].ID)
	}
	if list[1].State != StateDoing || list[1].Deadline.String() != "2024-03-01" {
		t.Fatalf("patch not applied: %+v", list[1])
	}
}

func TestUpdateErrors(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	mustCreate(t, s, Task{Title: "a"})

	for _, idx := range []int{-1, 1, 10} {
		if _, err := s.Update(idx, Task{Title: "x"}); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("index %d: expected ErrOutOfRange, got %v", idx, err)
		}
	}
	if _, err := s.Update(0, Task{Title: " "}); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if got := titles(s.Tasks()); got != "a" {
		t.Fatalf("failed updates changed the list: %s", got)
	}
}

func TestDeleteShiftsAndKeepsOrder(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	for _, title := range []string{"a", "b", "c", "d"} {
		mustCreate(t, s, Task{Title: title})
	}
	list, err := s.Delete(1)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := titles(list); got != "a,c,d" {
		t.Fatalf("unexpected order %s", got)
	}
	if _, err := s.Delete(3); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := s.Delete(-1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestAddressByID(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	mustCreate(t, s, Task{Title: "a"})
	mustCreate(t, s, Task{Title: "b"})

	if _, err := s.UpdateByID("id-2", Task{Title: "bee"}); err != nil {
		t.Fatalf("update by id: %v", err)
	}
	got, ok := s.Get("id-2")
	if !ok || got.Title != "bee" {
		t.Fatalf("unexpected task %+v ok=%v", got, ok)
	}

	if _, err := s.UpdateByID("missing", Task{Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.DeleteByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.DeleteByID(""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty id, got %v", err)
	}

	list, err := s.DeleteByID("id-1")
	if err != nil {
		t.Fatalf("delete by id: %v", err)
	}
	if got := titles(list); got != "bee" {
		t.Fatalf("unexpected list %s", got)
	}
}

func TestSortByStateScenario(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	mustCreate(t, s, Task{Title: "0", State: StateDone})
	mustCreate(t, s, Task{Title: "1", State: StateNotDone})
	mustCreate(t, s, Task{Title: "2", State: StateDone})

	list, err := s.SortByState(StateDone)
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	if got := titles(list); got != "0,2,1" {
		t.Fatalf("expected 0,2,1 got %s", got)
	}
	if got := titles(s.Tasks()); got != "0,2,1" {
		t.Fatalf("sort must reorder the canonical list, got %s", got)
	}
	if got := titles(s.Load()); got != "0,2,1" {
		t.Fatalf("sort must persist, got %s", got)
	}
}

func TestSortByDeadlinePersists(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	mustCreate(t, s, Task{Title: "none-1"})
	mustCreate(t, s, Task{Title: "late", Deadline: NewDeadline(2025, 6, 1)})
	mustCreate(t, s, Task{Title: "none-2"})
	mustCreate(t, s, Task{Title: "early", Deadline: NewDeadline(2024, 1, 15)})

	if _, err := s.SortByDeadline(); err != nil {
		t.Fatalf("sort: %v", err)
	}
	if got := titles(s.Load()); got != "early,late,none-1,none-2" {
		t.Fatalf("unexpected order %s", got)
	}
}

func TestStoreFilterDoesNotMutate(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	mustCreate(t, s, Task{Title: "a", State: StateDone})
	mustCreate(t, s, Task{Title: "b", State: StateDoing})
	mustCreate(t, s, Task{Title: "c", State: StateDone})

	if got := titles(s.Filter(Criteria(StateDone))); got != "a,c" {
		t.Fatalf("unexpected filter result %s", got)
	}
	if got := titles(s.Filter(AllTasks)); got != "a,b,c" {
		t.Fatalf("all tasks should be identity, got %s", got)
	}
	if got := titles(s.Tasks()); got != "a,b,c" {
		t.Fatalf("filter changed canonical order: %s", got)
	}
}

func TestRoundTrip(t *testing.T) {
	kv := storage.NewMemory()
	s := newTestStore(t, kv)
	mustCreate(t, s, Task{Title: "a", Summary: "first", State: StateDoing, Deadline: NewDeadline(2024, 12, 31)})
	mustCreate(t, s, Task{Title: "b"})
	mustCreate(t, s, Task{Title: "c", State: StateDone})
	if _, err := s.Update(2, Task{Title: "c2", Summary: "changed", State: StateDone}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := s.Delete(1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	want := s.Tasks()

	reopened, err := Open(kv, key)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := reopened.Tasks()
	if reopened.LoadStatus() != Loaded {
		t.Fatalf("expected Loaded, got %v", reopened.LoadStatus())
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(got))
	}
	for i := range want {
		if !sameTask(got[i], want[i]) {
			t.Fatalf("task %d differs after reload:\nwant %+v\ngot  %+v", i, want[i], got[i])
		}
	}
}

func TestLoadStatuses(t *testing.T) {
	tests := []struct {
		name   string
		stored *string
		status LoadStatus
		want   string
	}{
		{name: "missing", stored: nil, status: Fresh, want: ""},
		{name: "corrupt", stored: ptr("{not json"), status: Corrupt, want: ""},
		{name: "wrong shape", stored: ptr(`{"title":"x"}`), status: Corrupt, want: ""},
		{name: "null", stored: ptr("null"), status: Loaded, want: ""},
		{name: "empty array", stored: ptr("[]"), status: Loaded, want: ""},
		{
			name:   "legacy records without ids",
			stored: ptr(`[{"title":"a","summary":"","state":"Done","deadline":null},{"title":"b","state":"Not done","deadline":""}]`),
			status: Loaded,
			want:   "a,b",
		},
		{name: "drops untitled records", stored: ptr(`[{"title":""},{"title":"keep"}]`), status: Loaded, want: "keep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := storage.NewMemory()
			if tt.stored != nil {
				kv.Set(key, *tt.stored)
			}
			s := newTestStore(t, kv)
			if s.LoadStatus() != tt.status {
				t.Fatalf("expected status %v, got %v", tt.status, s.LoadStatus())
			}
			if got := titles(s.Tasks()); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			for _, task := range s.Tasks() {
				if task.ID == "" {
					t.Fatalf("loaded task without id: %+v", task)
				}
			}
		})
	}
}

func TestLoadUnavailable(t *testing.T) {
	kv := storage.NewMemory()
	kv.Close()
	s, err := Open(kv, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.LoadStatus() != Unavailable || s.Len() != 0 {
		t.Fatalf("expected empty unavailable store, got %v with %d tasks", s.LoadStatus(), s.Len())
	}
}

func TestCorruptValueIsReplacedOnNextWrite(t *testing.T) {
	kv := storage.NewMemory()
	kv.Set(key, "garbage")
	s := newTestStore(t, kv)
	mustCreate(t, s, Task{Title: "fresh start"})

	s.Load()
	if s.LoadStatus() != Loaded || titles(s.Tasks()) != "fresh start" {
		t.Fatalf("unexpected state after rewrite: %v %s", s.LoadStatus(), titles(s.Tasks()))
	}
}

func TestFailedWriteRollsBack(t *testing.T) {
	kv := storage.NewMemory()
	s := newTestStore(t, kv)
	mustCreate(t, s, Task{Title: "a", State: StateNotDone})
	mustCreate(t, s, Task{Title: "b", State: StateDone})

	boom := errors.New("disk full")
	kv.Failing = boom

	ops := map[string]func() ([]Task, error){
		"create":       func() ([]Task, error) { return s.Create(Task{Title: "c"}) },
		"update":       func() ([]Task, error) { return s.Update(0, Task{Title: "z"}) },
		"delete":       func() ([]Task, error) { return s.Delete(0) },
		"sort state":   func() ([]Task, error) { return s.SortByState(StateDone) },
		"sort due":     func() ([]Task, error) { return s.SortByDeadline() },
		"delete by id": func() ([]Task, error) { return s.DeleteByID("id-2") },
	}
	for name, op := range ops {
		list, err := op()
		if !errors.Is(err, ErrStorageUnavailable) || !errors.Is(err, boom) {
			t.Fatalf("%s: expected wrapped storage error, got %v", name, err)
		}
		if got := titles(list); got != "a,b" {
			t.Fatalf("%s: list changed after failed write: %s", name, got)
		}
		if got := titles(s.Tasks()); got != "a,b" {
			t.Fatalf("%s: store changed after failed write: %s", name, got)
		}
	}
}

func TestTasksReturnsCopy(t *testing.T) {
	s := newTestStore(t, storage.NewMemory())
	mustCreate(t, s, Task{Title: "a"})
	list := s.Tasks()
	list[0].Title = "mutated"
	if s.Tasks()[0].Title != "a" {
		t.Fatal("Tasks must not expose the internal slice")
	}
}

func TestEmptyListPersistsAsArray(t *testing.T) {
	kv := storage.NewMemory()
	s := newTestStore(t, kv)
	mustCreate(t, s, Task{Title: "a"})
	if _, err := s.Delete(0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	v, _, _ := kv.Get(key)
	if v != "[]" {
		t.Fatalf("expected [] in storage, got %q", v)
	}
}

func ptr(s string) *string { return &s }
