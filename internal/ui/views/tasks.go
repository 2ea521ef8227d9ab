// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/state"
	"github.com/jeranaias/microstep-tui/internal/ui/components"
	"github.com/jeranaias/microstep-tui/internal/util"
)

// Task view messages.
const (
	msgTasksLoadFailed = "Failed to load tasks"
	msgAddFailed       = "Failed to add task"
	msgTitleRequired   = "Please enter a task title"
	msgTaskAdded       = "Task added successfully! 🎯"
)

// Form fields in focus order.
const (
	fieldTitle = iota
	fieldDescription
	fieldPriority
	fieldDuration
	fieldCount
)

// Tasks lists pending and completed tasks and hosts the add form.
type Tasks struct {
	deps    *Deps
	keys    KeyMap
	spinner spinner.Model
	loading bool

	cursor     int
	completing string

	filtering bool
	filter    textinput.Model

	adding      bool
	submitting  bool
	focus       int
	title       textinput.Model
	description textinput.Model
	duration    textinput.Model
	priority    model.Priority
}

// NewTasks creates the task list view.
func NewTasks(deps *Deps) Tasks {
	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "filter tasks..."
	filter.CharLimit = 128

	m := Tasks{
		deps:    deps,
		keys:    DefaultKeyMap(),
		spinner: newSpinner(),
		filter:  filter,
	}
	m.resetForm()
	return m
}

func (m *Tasks) resetForm() {
	m.title = textinput.New()
	m.title.Placeholder = "What do you want to accomplish?"
	m.title.CharLimit = 200

	m.description = textinput.New()
	m.description.Placeholder = "Add more details about this task..."
	m.description.CharLimit = 1000

	m.duration = textinput.New()
	m.duration.CharLimit = 3
	m.duration.SetValue(strconv.Itoa(model.DefaultDuration))

	m.priority = model.DefaultPriority
	m.focus = fieldTitle
	m.submitting = false
}

// Loading reports whether the task list fetch is outstanding.
func (m Tasks) Loading() bool {
	return m.loading
}

// Adding reports whether the add form is open.
func (m Tasks) Adding() bool {
	return m.adding
}

// Capturing reports whether keys should go to a text field rather than the
// shell's global bindings.
func (m Tasks) Capturing() bool {
	return m.adding || m.filtering
}

// Mount fetches the task list.
func (m Tasks) Mount() (Tasks, tea.Cmd) {
	m.loading = true
	m.cursor = 0
	return m, tea.Batch(m.spinner.Tick, loadTasksCmd(m.deps, components.TabTasks))
}

// visible returns the pending and completed tasks that pass the filter.
func (m Tasks) visible(snap state.Snapshot) (pending, completed []model.Task) {
	pending, completed = snap.PendingTasks(), snap.CompletedTasks()
	if q := strings.TrimSpace(m.filter.Value()); q != "" {
		pending = components.FilterTasks(q, pending)
		completed = components.FilterTasks(q, completed)
	}
	return pending, completed
}

// Update folds task view messages into the snapshot.
func (m Tasks) Update(msg tea.Msg, snap state.Snapshot) (Tasks, state.Snapshot, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		if msg.view != components.TabTasks {
			return m, snap, nil
		}
		m.loading = false
		if msg.err != nil {
			// A failed load shows an empty list, not whatever another view fetched.
			m.cursor = 0
			return m, snap.WithTasks(nil), failToast(msg.err, msgTasksLoadFailed)
		}
		return m, snap.WithTasks(msg.tasks), nil

	case taskCreatedMsg:
		m.submitting = false
		if msg.err != nil {
			return m, snap, failToast(msg.err, msgAddFailed)
		}
		m.adding = false
		m.resetForm()
		return m, snap.WithCreatedTask(msg.task), components.SuccessToastCmd(msgTaskAdded)

	case taskCompletedMsg:
		if msg.view != components.TabTasks {
			return m, snap, nil
		}
		m.completing = ""
		if msg.err != nil {
			return m, snap, failToast(msg.err, msgCompleteFailed)
		}
		snap = snap.WithCompletion(msg.taskID, msg.reply, m.deps.now(), state.MarkCompleted)
		pending, _ := m.visible(snap)
		m.cursor = clamp(m.cursor, len(pending))
		return m, snap, tea.Batch(
			celebrateCmd(msg.reply.Celebration, msg.reply.PointsEarned),
			components.SuccessToastCmd(fmt.Sprintf("Task completed! +%d points 🎉", msg.reply.PointsEarned)),
		)

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, snap, cmd
		}
		return m, snap, nil

	case tea.KeyMsg:
		switch {
		case m.adding:
			return m.handleFormKey(msg, snap)
		case m.filtering:
			return m.handleFilterKey(msg, snap)
		default:
			return m.handleKey(msg, snap)
		}
	}
	return m, snap, nil
}

func (m Tasks) handleKey(msg tea.KeyMsg, snap state.Snapshot) (Tasks, state.Snapshot, tea.Cmd) {
	if m.loading {
		return m, snap, nil
	}
	pending, _ := m.visible(snap)

	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = clamp(m.cursor-1, len(pending))
	case key.Matches(msg, m.keys.Down):
		m.cursor = clamp(m.cursor+1, len(pending))
	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.resetForm()
		return m, snap, m.focusField()
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m, snap, m.filter.Focus()
	case key.Matches(msg, m.keys.Cancel):
		m.filter.SetValue("")
		m.cursor = 0
	case key.Matches(msg, m.keys.Refresh):
		var cmd tea.Cmd
		m, cmd = m.Mount()
		return m, snap, cmd
	case key.Matches(msg, m.keys.Complete):
		if len(pending) == 0 || m.completing != "" {
			return m, snap, nil
		}
		id := pending[clamp(m.cursor, len(pending))].TaskID
		m.completing = id
		return m, snap, completeTaskCmd(m.deps, components.TabTasks, id)
	}
	return m, snap, nil
}

func (m Tasks) handleFilterKey(msg tea.KeyMsg, snap state.Snapshot) (Tasks, state.Snapshot, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.filtering = false
		m.filter.SetValue("")
		m.filter.Blur()
		m.cursor = 0
		return m, snap, nil
	case key.Matches(msg, m.keys.Submit):
		m.filtering = false
		m.filter.Blur()
		return m, snap, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	pending, _ := m.visible(snap)
	m.cursor = clamp(m.cursor, len(pending))
	return m, snap, cmd
}

func (m Tasks) handleFormKey(msg tea.KeyMsg, snap state.Snapshot) (Tasks, state.Snapshot, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.adding = false
		m.resetForm()
		return m, snap, nil
	case key.Matches(msg, m.keys.Submit):
		return m.submit(snap)
	case msg.String() == "tab" || msg.String() == "down":
		m.focus = (m.focus + 1) % fieldCount
		return m, snap, m.focusField()
	case msg.String() == "shift+tab" || msg.String() == "up":
		m.focus = (m.focus + fieldCount - 1) % fieldCount
		return m, snap, m.focusField()
	}

	if m.focus == fieldPriority {
		switch {
		case key.Matches(msg, m.keys.Right), msg.String() == " ":
			m.priority = m.priority.Next()
		case key.Matches(msg, m.keys.Left):
			m.priority = m.priority.Next().Next()
		}
		return m, snap, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldTitle:
		m.title, cmd = m.title.Update(msg)
	case fieldDescription:
		m.description, cmd = m.description.Update(msg)
	case fieldDuration:
		m.duration, cmd = m.duration.Update(msg)
	}
	return m, snap, cmd
}

// focusField moves the cursor to the focused text field.
func (m *Tasks) focusField() tea.Cmd {
	m.title.Blur()
	m.description.Blur()
	m.duration.Blur()
	switch m.focus {
	case fieldTitle:
		return m.title.Focus()
	case fieldDescription:
		return m.description.Focus()
	case fieldDuration:
		return m.duration.Focus()
	}
	return nil
}

// newTask reads the form. An unparsable duration reads as 0 and fails
// validation with the range message.
func (m Tasks) newTask() model.NewTask {
	dur, _ := strconv.Atoi(strings.TrimSpace(m.duration.Value()))
	return model.NewTask{
		Title:             strings.TrimSpace(m.title.Value()),
		Description:       strings.TrimSpace(m.description.Value()),
		Priority:          m.priority,
		EstimatedDuration: dur,
	}
}

func (m Tasks) submit(snap state.Snapshot) (Tasks, state.Snapshot, tea.Cmd) {
	if m.submitting {
		return m, snap, nil
	}
	req := m.newTask()
	if err := req.Validate(); err != nil {
		if errors.Is(err, model.ErrEmptyTitle) {
			return m, snap, components.ErrorToastCmd(msgTitleRequired)
		}
		return m, snap, components.ErrorToastCmd(sentence(err.Error()))
	}
	m.submitting = true
	return m, snap, createTaskCmd(m.deps, req)
}

// View renders the task list over snap.
func (m Tasks) View(snap state.Snapshot) string {
	theme := m.deps.Theme
	if m.loading {
		return components.Loading(theme, m.spinner.View(), "your tasks")
	}
	width := m.deps.width()

	header := theme.Title.Render("Task Manager") + "\n" +
		theme.Subtitle.Render("Break down your goals into manageable micro-steps")

	var form string
	if m.adding {
		form = m.formView()
	}

	var filter string
	if m.filtering || m.filter.Value() != "" {
		filter = m.filter.View()
	}

	pending, completed := m.visible(snap)
	cursor := clamp(m.cursor, len(pending))

	var b strings.Builder
	b.WriteString(theme.Section.Render(fmt.Sprintf("Pending Tasks (%d)", len(pending))))
	b.WriteString("\n")
	if len(pending) == 0 {
		b.WriteString(theme.Muted.Render("No pending tasks. Add one to get started!"))
	}
	for i, t := range pending {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(components.TaskLine(theme, t, !m.adding && i == cursor, width))
	}
	pendingView := b.String()

	var completedView string
	if len(completed) > 0 {
		b.Reset()
		b.WriteString(theme.Section.Render(fmt.Sprintf("Completed Tasks (%d)", len(completed))))
		for _, t := range completed {
			b.WriteString("\n")
			b.WriteString(components.TaskLine(theme, t, false, width))
		}
		completedView = b.String()
	}

	help := helpLine(m.keys.Up, m.keys.Down, m.keys.Complete, m.keys.Add, m.keys.Filter)
	if m.adding {
		help = helpLine(m.keys.NextFld, m.keys.Submit, m.keys.Cancel) + " • left/right priority"
	}

	return joinLines(header, form, filter, pendingView, completedView, theme.Help.Render(help))
}

func (m Tasks) formView() string {
	theme := m.deps.Theme
	label := func(field int, text string) string {
		if m.focus == field {
			return theme.FormLabelFocus.Render(text)
		}
		return theme.FormLabel.Render(text)
	}

	priority := "< " + util.Label(m.priority.String()) + " >"
	if m.focus == fieldPriority {
		priority = theme.FormLabelFocus.Render(priority)
	}

	body := strings.Join([]string{
		theme.Section.Render("Create New Task"),
		label(fieldTitle, "Task Title *"),
		m.title.View(),
		label(fieldDescription, "Description"),
		m.description.View(),
		label(fieldPriority, "Priority"),
		priority,
		label(fieldDuration, fmt.Sprintf("Estimated Duration (minutes, %d-%d)", model.MinDuration, model.MaxDuration)),
		m.duration.View(),
		"",
		theme.FormButton.Render("Add Task"),
	}, "\n")
	return theme.FormBox.Render(body)
}
