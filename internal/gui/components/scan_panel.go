package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const instructions = "Load papers into the scanner and click the button to begin"

// ScanPanel is the main tab: the start and cancel controls and one
// progress indicator per stage.
type ScanPanel struct {
	container *fyne.Container

	StartButton   *widget.Button
	CancelButton  *widget.Button
	ScanProgress  *widget.ProgressBarInfinite
	EmailProgress *widget.ProgressBarInfinite

	startHandler  func()
	cancelHandler func()
}

func NewScanPanel() *ScanPanel {
	panel := &ScanPanel{}
	panel.setupControls()
	return panel
}

func (sp *ScanPanel) setupControls() {
	intro := widget.NewLabel(instructions)
	intro.Wrapping = fyne.TextWrapWord

	sp.StartButton = widget.NewButton("Scan and Email PDF", sp.onStart)
	sp.StartButton.Importance = widget.HighImportance

	sp.CancelButton = widget.NewButton("Cancel", sp.onCancel)
	sp.CancelButton.Disable()

	sp.ScanProgress = widget.NewProgressBarInfinite()
	sp.ScanProgress.Stop()

	sp.EmailProgress = widget.NewProgressBarInfinite()
	sp.EmailProgress.Stop()

	progress := container.NewVBox(
		widget.NewLabel("Scanning"),
		sp.ScanProgress,
		widget.NewLabel("Email"),
		sp.EmailProgress,
	)

	sp.container = container.NewVBox(
		intro,
		widget.NewSeparator(),
		container.NewGridWithColumns(2, sp.StartButton, sp.CancelButton),
		progress,
	)
}

func (sp *ScanPanel) GetContainer() *fyne.Container {
	return sp.container
}

func (sp *ScanPanel) SetStartHandler(handler func()) {
	sp.startHandler = handler
}

func (sp *ScanPanel) SetCancelHandler(handler func()) {
	sp.cancelHandler = handler
}

// SetStartEnabled toggles the start control. Cancel is offered exactly
// while start is unavailable.
func (sp *ScanPanel) SetStartEnabled(enabled bool) {
	if enabled {
		sp.StartButton.Enable()
		sp.CancelButton.Disable()
		return
	}
	sp.StartButton.Disable()
	sp.CancelButton.Enable()
}

// SetCancelEnabled toggles the cancel control on its own, for the stages
// that can no longer be cancelled.
func (sp *ScanPanel) SetCancelEnabled(enabled bool) {
	if enabled {
		sp.CancelButton.Enable()
		return
	}
	sp.CancelButton.Disable()
}

func (sp *ScanPanel) SetScanActive(active bool) {
	setRunning(sp.ScanProgress, active)
}

func (sp *ScanPanel) SetEmailActive(active bool) {
	setRunning(sp.EmailProgress, active)
}

func setRunning(bar *widget.ProgressBarInfinite, active bool) {
	if active {
		bar.Start()
		return
	}
	bar.Stop()
}

func (sp *ScanPanel) onStart() {
	if sp.startHandler != nil {
		sp.startHandler()
	}
}

func (sp *ScanPanel) onCancel() {
	if sp.cancelHandler != nil {
		sp.cancelHandler()
	}
}
