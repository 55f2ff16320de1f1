package app

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
)

const aboutText = "Scan document to PDF and attach to new Thunderbird E-Mail.\n\n" +
	"(C) 2017 Andrew Logue.  Icon (C) 2013 Thomas Tamblyn.\n" +
	"Made for Dave Schwab at Ribstone Resources Ltd."

func (a *Application) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Settings", a.guiManager.ShowSettingsTab),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Exit", a.quit),
	)
	// fyne appends its own Quit item to the first menu; Exit replaces it.
	fileMenu.Items[len(fileMenu.Items)-1].IsQuit = true

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", a.showAbout),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, helpMenu))
}

func (a *Application) showAbout() {
	dialog.ShowInformation("About "+AppName, aboutText, a.window)
}

func (a *Application) quit() {
	a.logger.Info("Application", "exit requested", nil)
	a.shutdown.Shutdown()
	a.fyneApp.Quit()
}
