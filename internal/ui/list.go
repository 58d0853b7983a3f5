package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/aizithy/audio-extractor-cloud/internal/tasks"
)

var _ list.Item = taskItem{}

// taskItem wraps [tasks.View] to implement [list.Item].
type taskItem struct {
	view tasks.View
}

func (i taskItem) FilterValue() string {
	if i.view.Title != "" {
		return i.view.Title
	}
	return i.view.TaskID
}

func (i taskItem) Title() string {
	title := i.view.Title
	if title == "" {
		title = i.view.TaskID
	}
	return fmt.Sprintf("%s %s", statusStyle(i.view.Status).Render(string(i.view.Status)), title)
}

func (i taskItem) Description() string {
	desc := fmt.Sprintf("%d%% • %s", i.view.Progress, i.view.Message)
	if i.view.ErrorDetail != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.view.ErrorDetail)
	}
	return desc
}
