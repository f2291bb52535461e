package ui

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mytasks/internal/config"
	"mytasks/internal/storage"
	"mytasks/internal/tasks"
)

type mode int

const (
	modeList mode = iota
	modeForm
)

type Model struct {
	store      *tasks.Store
	prefs      storage.KV
	cfg        config.Config
	filter     tasks.Criteria
	visible    []tasks.Task
	cursor     int
	mode       mode
	input      textinput.Model
	form       *formState
	status     string
	confirmDel bool
	pendingDel *tasks.Task
	theme      Theme
	styles     styles
}

// New builds the model. prefs holds the theme choice and may be nil.
func New(store *tasks.Store, prefs storage.KV, cfg config.Config) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	filter, ok := tasks.ParseCriteria(cfg.DefaultFilter)
	if !ok {
		filter = tasks.AllTasks
	}
	theme := loadTheme(prefs, cfg.ThemeKey, cfg.Theme)

	m := Model{
		store:  store,
		prefs:  prefs,
		cfg:    cfg,
		filter: filter,
		mode:   modeList,
		input:  ti,
		theme:  theme,
		styles: newStyles(theme),
		status: fmt.Sprintf("Press '%s' to add a task, '%s' to edit, '%s' to delete.", cfg.Keys.Add, cfg.Keys.Edit, cfg.Keys.Delete),
	}
	switch store.LoadStatus() {
	case tasks.Corrupt:
		m.status = "Stored tasks could not be read; starting with an empty list."
	case tasks.Unavailable:
		m.status = "Storage unavailable; starting with an empty list."
	}
	m.refresh()
	return m
}

func Run(store *tasks.Store, prefs storage.KV, cfg config.Config) error {
	program := tea.NewProgram(New(store, prefs, cfg))
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.form != nil {
			return m.updateFormMode(msg.String(), msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

// refresh recomputes the filtered projection and keeps the cursor in range.
func (m *Model) refresh() {
	m.visible = m.store.Filter(m.filter)
	m.cursor = clampCursor(m.cursor, len(m.visible))
}

func (m *Model) selectID(id string) {
	for i, t := range m.visible {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m Model) current() (tasks.Task, bool) {
	if len(m.visible) == 0 {
		return tasks.Task{}, false
	}
	return m.visible[clampCursor(m.cursor, len(m.visible))], true
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit
	case k.Down, "down":
		if len(m.visible) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(m.visible))
	case k.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.visible))
		}
	case k.Add:
		return m.startForm(newForm(tasks.StateNotDone))
	case k.Edit:
		t, ok := m.current()
		if !ok {
			m.status = "No tasks to edit"
			return m, nil
		}
		return m.startForm(editForm(t))
	case k.Delete:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Title)
	case k.Filter:
		m.filter = m.filter.Next()
		m.cursor = 0
		m.refresh()
		m.status = "Filter: " + filterLabel(m.filter)
	case k.DoneFirst:
		return m.sortByState(tasks.StateDone), nil
	case k.DoingFirst:
		return m.sortByState(tasks.StateDoing), nil
	case k.NotDoneFirst:
		return m.sortByState(tasks.StateNotDone), nil
	case k.SortDeadline:
		if _, err := m.store.SortByDeadline(); err != nil {
			m.status = fmt.Sprintf("sort failed: %v", err)
			return m, nil
		}
		m.refresh()
		m.status = "Sorted by deadline"
	case k.ToggleTheme, k.ToggleThemeAlt:
		return m.toggleTheme(), nil
	}
	return m, nil
}

func (m Model) sortByState(st tasks.State) Model {
	if _, err := m.store.SortByState(st); err != nil {
		m.status = fmt.Sprintf("sort failed: %v", err)
		return m
	}
	m.refresh()
	m.status = fmt.Sprintf("Showing '%s' first", st)
	return m
}

func (m Model) toggleTheme() Model {
	m.theme = m.theme.Toggle()
	m.styles = newStyles(m.theme)
	m.status = fmt.Sprintf("Theme: %s", m.theme)
	if m.prefs == nil {
		return m
	}
	if err := m.prefs.Set(m.cfg.ThemeKey, string(m.theme)); err != nil {
		log.Printf("ui: save theme: %v", err)
		m.status = fmt.Sprintf("theme not saved: %v", err)
	}
	return m
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		if _, err := m.store.DeleteByID(m.pendingDel.ID); err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
		} else {
			m.status = "Deleted task"
		}
		m.refresh()
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) startForm(f *formState) (tea.Model, tea.Cmd) {
	m.form = f
	m.mode = modeForm
	m.input.SetValue(f.currentValue())
	m.input.CursorEnd()
	m.input.Placeholder = f.currentLabel()
	m.input.Focus()
	m.status = m.formPrompt()
	return m, textinput.Blink
}

func (m Model) updateFormMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.form = nil
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case "tab", "down":
		m.moveField(1)
		return m, nil
	case "shift+tab", "up":
		m.moveField(-1)
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.form.setCurrentValue(m.input.Value())
		if !m.form.last() {
			m.moveField(1)
			return m, nil
		}
		return m.saveForm()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) moveField(delta int) {
	m.form.setCurrentValue(m.input.Value())
	m.form.index = wrapIndex(m.form.index+delta, fieldCount)
	m.input.SetValue(m.form.currentValue())
	m.input.CursorEnd()
	m.input.Placeholder = m.form.currentLabel()
	m.status = m.formPrompt()
}

func (m Model) saveForm() (tea.Model, tea.Cmd) {
	t, err := m.form.task()
	if err != nil {
		m.status = err.Error()
		return m, nil
	}

	var (
		id   string
		list []tasks.Task
		done string
	)
	if m.form.editing() {
		id = m.form.taskID
		list, err = m.store.UpdateByID(id, t)
		done = "Saved changes"
	} else {
		list, err = m.store.Create(t)
		done = "Added task"
		if err == nil && len(list) > 0 {
			id = list[len(list)-1].ID
		}
	}
	switch {
	case errors.Is(err, tasks.ErrEmptyTitle):
		m.status = "Title cannot be empty"
		m.form.index = fieldTitle
		m.input.SetValue(m.form.currentValue())
		m.input.CursorEnd()
		m.input.Placeholder = m.form.currentLabel()
		return m, nil
	case err != nil:
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}

	m.form = nil
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
	m.refresh()
	m.selectID(id)
	m.status = done
	return m, nil
}

func (m Model) formPrompt() string {
	if m.form == nil {
		return ""
	}
	verb := "New task"
	if m.form.editing() {
		verb = "Edit task"
	}
	return fmt.Sprintf("%s: %s (field %d of %d). Enter to advance, tab to move, esc to cancel.",
		verb, m.form.currentLabel(), m.form.index+1, fieldCount)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render("My Tasks"))
	b.WriteString(m.styles.dimmed.Render(fmt.Sprintf("  [%s]", m.theme)))
	b.WriteString("\n")
	b.WriteString(m.styles.dimmed.Render("Filter: " + filterLabel(m.filter)))
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString(m.styles.dimmed.Render("No tasks matching the criteria"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTaskList())
	}

	b.WriteString("---\n")
	if m.form != nil {
		b.WriteString(m.renderForm())
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.status.Render(m.status))
	b.WriteString("\n")
	b.WriteString(m.styles.help.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s edit • %s delete • %s filter • %s/%s/%s done/doing/not done first • %s deadline • %s theme • %s quit",
		k.Up, k.Down, k.Add, k.Edit, k.Delete, k.Filter, k.DoneFirst, k.DoingFirst, k.NotDoneFirst, k.SortDeadline, k.ToggleThemeAlt, k.Quit)
}

func (m Model) renderTaskList() string {
	var b strings.Builder
	for i, t := range m.visible {
		cursor := " "
		title := m.styles.task.Render(t.Title)
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
			title = m.styles.selected.Render(t.Title)
		}
		summary := t.Summary
		if summary == "" {
			summary = "No summary was provided for this task"
		}
		deadline := t.Deadline.String()
		if deadline == "" {
			deadline = "No deadline set"
		}

		b.WriteString(fmt.Sprintf("%s %s\n", cursor, title))
		b.WriteString("    " + m.styles.dimmed.Render(summary) + "\n")
		b.WriteString("    " + m.styles.stateStyle(t.State).Render("State: "+string(t.State)) + "\n")
		b.WriteString("    " + m.styles.dimmed.Render("Deadline: "+deadline) + "\n")
	}
	return b.String()
}

func (m Model) renderForm() string {
	if m.form == nil {
		return ""
	}
	var b strings.Builder
	if m.form.editing() {
		b.WriteString("Edit Task\n")
	} else {
		b.WriteString("New Task\n")
	}
	for i, name := range formFields() {
		prefix := " "
		if i == m.form.index {
			prefix = ">"
		}
		val := m.form.values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-28s : %s\n", prefix, name, val))
	}
	return b.String()
}

func filterLabel(c tasks.Criteria) string {
	if c == tasks.AllTasks {
		return string(c)
	}
	return fmt.Sprintf("Only '%s'", c)
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
