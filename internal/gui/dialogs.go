package gui

import (
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

func (m *Manager) browseFolder(current string, onChosen func(string)) {
	d := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			m.ShowError("Choose a Folder", err)
			return
		}
		if uri == nil {
			return
		}
		onChosen(filepath.Clean(uri.Path()))
	}, m.window)

	setStartLocation(d, current)
	d.Show()
}

func (m *Manager) browseFile(current string, onChosen func(string)) {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			m.ShowError("Choose a Program", err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		onChosen(filepath.Clean(path))
	}, m.window)

	setStartLocation(d, filepath.Dir(current))
	d.Show()
}

// setStartLocation opens the dialog in dir when it is an existing directory.
func setStartLocation(d *dialog.FileDialog, dir string) {
	if dir == "" {
		return
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return
	}

	lister, err := storage.ListerForURI(storage.NewFileURI(dir))
	if err != nil {
		return
	}
	d.SetLocation(lister)
}
