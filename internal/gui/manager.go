package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"

	"ribscan/internal/gui/components"
	"ribscan/internal/logger"
	"ribscan/internal/settings"
)

const (
	scanTabIndex     = 0
	settingsTabIndex = 1

	scanErrorTitle = "Scanning Error"
)

// Manager owns the window content and implements workflow.View. Every
// method must run on the UI goroutine.
type Manager struct {
	window fyne.Window
	logger logger.Logger

	tabs          *container.AppTabs
	scanPanel     *components.ScanPanel
	settingsPanel *components.SettingsPanel
	statusBar     *components.StatusBar
	alerts        *alertQueue
}

func NewManager(window fyne.Window, log logger.Logger) *Manager {
	m := &Manager{
		window:        window,
		logger:        log,
		scanPanel:     components.NewScanPanel(),
		settingsPanel: components.NewSettingsPanel(),
		statusBar:     components.NewStatusBar(),
	}

	m.alerts = newAlertQueue(m.showAlert)
	m.settingsPanel.SetBrowseHandlers(m.browseFolder, m.browseFile)

	m.tabs = container.NewAppTabs(
		container.NewTabItem("Scan", m.scanPanel.GetContainer()),
		container.NewTabItem("Settings", m.settingsPanel.GetContainer()),
	)
	m.tabs.SelectIndex(scanTabIndex)

	log.Debug("GUIManager", "initialized", nil)
	return m
}

func (m *Manager) GetMainContainer() fyne.CanvasObject {
	return container.NewBorder(nil, m.statusBar.GetContainer(), nil, nil, m.tabs)
}

func (m *Manager) SetStartHandler(handler func()) {
	m.scanPanel.SetStartHandler(func() {
		m.logger.Debug("GUIManager", "start requested", nil)
		handler()
	})
}

func (m *Manager) SetCancelHandler(handler func()) {
	m.scanPanel.SetCancelHandler(func() {
		m.logger.Debug("GUIManager", "cancel requested", nil)
		handler()
	})
}

func (m *Manager) SetSaveHandler(handler func(settings.Settings)) {
	m.settingsPanel.SetSaveHandler(handler)
}

// SetSettings shows s on the settings tab.
func (m *Manager) SetSettings(s settings.Settings) {
	m.settingsPanel.SetSettings(s)
}

func (m *Manager) MarkSettingsSaved() {
	m.settingsPanel.MarkSaved()
}

func (m *Manager) ShowScanTab() {
	m.tabs.SelectIndex(scanTabIndex)
}

func (m *Manager) ShowSettingsTab() {
	m.tabs.SelectIndex(settingsTabIndex)
}

func (m *Manager) SetStartEnabled(enabled bool) {
	m.scanPanel.SetStartEnabled(enabled)
}

func (m *Manager) SetCancelEnabled(enabled bool) {
	m.scanPanel.SetCancelEnabled(enabled)
}

func (m *Manager) SetScanProgress(active bool) {
	m.scanPanel.SetScanActive(active)
}

func (m *Manager) SetEmailProgress(active bool) {
	m.scanPanel.SetEmailActive(active)
}

func (m *Manager) SetStatus(text string) {
	m.statusBar.SetStatus(text)
	m.logger.Debug("GUIManager", "status updated", map[string]interface{}{
		"status": text,
	})
}

// Status returns the text currently shown in the status bar.
func (m *Manager) Status() string {
	return m.statusBar.Status()
}

func (m *Manager) ShowScanError(message string) {
	m.alerts.push(scanErrorTitle, message)
}

func (m *Manager) ShowError(title string, err error) {
	m.logger.Error("GUIManager", err, map[string]interface{}{
		"title": title,
	})
	dialog.ShowError(err, m.window)
}

func (m *Manager) ShowInformation(title, message string) {
	dialog.ShowInformation(title, message, m.window)
}

func (m *Manager) showAlert(title, message string, onClosed func()) {
	d := dialog.NewInformation(title, message, m.window)
	d.SetOnClosed(onClosed)
	d.Show()
}
