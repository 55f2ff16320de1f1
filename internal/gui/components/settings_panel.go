package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"ribscan/internal/settings"
)

// BrowseFunc asks the user for a path starting at current and reports the
// choice through onChosen. It is not called when the user cancels.
type BrowseFunc func(current string, onChosen func(path string))

type SettingsPanel struct {
	container *fyne.Container

	PDFEntry     *widget.Entry
	ScannerEntry *widget.Entry
	EmailEntry   *widget.Entry

	PDFBrowse     *widget.Button
	ScannerBrowse *widget.Button
	EmailBrowse   *widget.Button

	SaveButton *widget.Button

	saveHandler  func(settings.Settings)
	browseFolder BrowseFunc
	browseFile   BrowseFunc
	populating   bool
}

func NewSettingsPanel() *SettingsPanel {
	panel := &SettingsPanel{}
	panel.setupControls()
	return panel
}

func (p *SettingsPanel) setupControls() {
	p.PDFEntry = p.newEntry()
	p.ScannerEntry = p.newEntry()
	p.EmailEntry = p.newEntry()

	p.PDFBrowse = widget.NewButton("...", func() { p.browse(p.browseFolder, p.PDFEntry) })
	p.ScannerBrowse = widget.NewButton("...", func() { p.browse(p.browseFile, p.ScannerEntry) })
	p.EmailBrowse = widget.NewButton("...", func() { p.browse(p.browseFile, p.EmailEntry) })

	p.SaveButton = widget.NewButton("Save", p.onSave)
	p.SaveButton.Disable()

	form := widget.NewForm(
		widget.NewFormItem("PDF folder", container.NewBorder(nil, nil, nil, p.PDFBrowse, p.PDFEntry)),
		widget.NewFormItem("NAPS2 command", container.NewBorder(nil, nil, nil, p.ScannerBrowse, p.ScannerEntry)),
		widget.NewFormItem("Thunderbird command", container.NewBorder(nil, nil, nil, p.EmailBrowse, p.EmailEntry)),
	)

	p.container = container.NewVBox(
		form,
		container.NewHBox(p.SaveButton),
	)
}

func (p *SettingsPanel) newEntry() *widget.Entry {
	entry := widget.NewEntry()
	entry.OnChanged = func(string) {
		if !p.populating {
			p.SaveButton.Enable()
		}
	}
	return entry
}

func (p *SettingsPanel) GetContainer() *fyne.Container {
	return p.container
}

func (p *SettingsPanel) SetSaveHandler(handler func(settings.Settings)) {
	p.saveHandler = handler
}

func (p *SettingsPanel) SetBrowseHandlers(folder, file BrowseFunc) {
	p.browseFolder = folder
	p.browseFile = file
}

// SetSettings fills the entries. The save control stays disabled until the
// user edits something.
func (p *SettingsPanel) SetSettings(s settings.Settings) {
	p.populating = true
	p.PDFEntry.SetText(s.PDFFolder)
	p.ScannerEntry.SetText(s.ScannerCommand)
	p.EmailEntry.SetText(s.EmailCommand)
	p.populating = false

	p.SaveButton.Disable()
}

// Settings returns the values currently shown, exactly as entered.
func (p *SettingsPanel) Settings() settings.Settings {
	return settings.Settings{
		PDFFolder:      p.PDFEntry.Text,
		ScannerCommand: p.ScannerEntry.Text,
		EmailCommand:   p.EmailEntry.Text,
	}
}

// MarkSaved disables the save control after a successful save.
func (p *SettingsPanel) MarkSaved() {
	p.SaveButton.Disable()
}

func (p *SettingsPanel) browse(fn BrowseFunc, entry *widget.Entry) {
	if fn == nil {
		return
	}
	fn(entry.Text, func(path string) {
		entry.SetText(path)
		p.SaveButton.Enable()
	})
}

func (p *SettingsPanel) onSave() {
	if p.saveHandler != nil {
		p.saveHandler(p.Settings())
	}
}
