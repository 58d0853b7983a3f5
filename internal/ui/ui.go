package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aizithy/audio-extractor-cloud/internal/services"
	"github.com/aizithy/audio-extractor-cloud/internal/shared"
	"github.com/aizithy/audio-extractor-cloud/internal/tasks"
)

// pollInterval is how often the monitor refreshes the task listing.
const pollInterval = 2 * time.Second

// ViewState represents the current view in the TUI.
type ViewState int

const (
	TaskListView ViewState = iota
	DetailView
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	client   *services.Client
	view     ViewState
	width    int
	height   int
	taskList list.Model
	ready    bool
	selected *tasks.View
	err      error
	help     help.Model
	keys     keyMap
}

type tickMsg time.Time

type tasksFetchedMsg struct {
	views []tasks.View
	err   error
}

type statusFetchedMsg struct {
	view *tasks.View
	err  error
}

type taskDeletedMsg struct {
	err error
}

// NewModel creates a new task monitor talking to the given service client.
func NewModel(ctx context.Context, client *services.Client) *Model {
	return &Model{
		ctx:    ctx,
		client: client,
		view:   TaskListView,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init starts the first fetch and the polling loop.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchTasks(), m.tick())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.ready {
			m.taskList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case TaskListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case tickMsg:
		return m, tea.Batch(m.fetchTasks(), m.tick())

	case tasksFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.setItems(msg.views)
		return m, nil

	case statusFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = TaskListView
			return m, nil
		}
		m.selected = msg.view
		m.view = DetailView
		return m, nil

	case taskDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		return m, m.fetchTasks()
	}

	if m.ready && m.view == TaskListView {
		var cmd tea.Cmd
		m.taskList, cmd = m.taskList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case TaskListView:
		return m.renderList()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m, m.fetchTasks()
	case "enter":
		if item, ok := m.selectedItem(); ok {
			return m, m.fetchStatus(item.view.TaskID)
		}
	case "d":
		if item, ok := m.selectedItem(); ok {
			return m, m.deleteTask(item.view.TaskID)
		}
	}

	if m.ready {
		var cmd tea.Cmd
		m.taskList, cmd = m.taskList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = TaskListView
		m.selected = nil
		return m, nil
	case "r":
		if m.selected != nil {
			return m, m.fetchStatus(m.selected.TaskID)
		}
	}
	return m, nil
}

func (m *Model) selectedItem() (taskItem, bool) {
	if !m.ready {
		return taskItem{}, false
	}
	item, ok := m.taskList.SelectedItem().(taskItem)
	return item, ok
}

// setItems replaces the list contents, preserving the cursor position.
func (m *Model) setItems(views []tasks.View) {
	items := make([]list.Item, len(views))
	for i, v := range views {
		items[i] = taskItem{view: v}
	}

	if !m.ready {
		m.taskList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.taskList.Title = "Extraction Tasks"
		m.taskList.SetSize(m.width-4, m.height-8)
		m.ready = true
		return
	}

	cursor := m.taskList.Index()
	m.taskList.SetItems(items)
	if cursor < len(items) {
		m.taskList.Select(cursor)
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) fetchTasks() tea.Cmd {
	return func() tea.Msg {
		listing, err := m.client.List(m.ctx, "")
		if err != nil {
			return tasksFetchedMsg{err: err}
		}
		return tasksFetchedMsg{views: listing.Tasks}
	}
}

func (m *Model) fetchStatus(id string) tea.Cmd {
	return func() tea.Msg {
		view, err := m.client.Status(m.ctx, id)
		return statusFetchedMsg{view: view, err: err}
	}
}

func (m *Model) deleteTask(id string) tea.Cmd {
	return func() tea.Msg {
		return taskDeletedMsg{err: m.client.Remove(m.ctx, id)}
	}
}

func (m *Model) renderList() string {
	if !m.ready {
		return styles.help.Render("Connecting to the extraction service...")
	}

	var errLine string
	if m.err != nil {
		errLine = styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.delete, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s%s\n\n%s", errLine, m.taskList.View(), helpView)
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return styles.err.Render("No task selected\n\nPress esc to go back")
	}

	v := m.selected
	title := styles.title.Render(fmt.Sprintf("Task %s", v.TaskID))

	info := fmt.Sprintf("Status: %s\nProgress: %d%%\nMessage: %s\nCreated: %s",
		statusStyle(v.Status).Render(string(v.Status)), v.Progress, v.Message, v.CreatedAt)

	if v.Title != "" {
		info += fmt.Sprintf("\nTitle: %s", v.Title)
	}
	if v.Duration > 0 {
		info += fmt.Sprintf("\nDuration: %s", shared.FormatDuration(v.Duration))
	}
	if v.AudioFile != "" {
		info += fmt.Sprintf("\nAudio: %s", v.AudioFile)
	}
	if v.VideoFile != "" {
		info += fmt.Sprintf("\nVideo: %s", v.VideoFile)
	}
	if v.ErrorDetail != "" {
		info += fmt.Sprintf("\n\n%s", styles.err.Render(v.ErrorDetail))
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
