package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
}

func NewStatusBar() *StatusBar {
	statusLabel := widget.NewLabel("")
	statusLabel.Truncation = fyne.TextTruncateEllipsis

	mainContainer := container.NewBorder(
		widget.NewSeparator(), nil,
		nil, nil,
		statusLabel,
	)

	return &StatusBar{
		container:   mainContainer,
		statusLabel: statusLabel,
	}
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}

// SetStatus shows text; an empty string clears the bar.
func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

func (sb *StatusBar) Status() string {
	return sb.statusLabel.Text
}
