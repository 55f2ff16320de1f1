// Package settings persists the scan folder and the two external command
// paths in a small INI file next to the program.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/ini.v1"

	"ribscan/internal/logger"
)

const (
	DefaultFileName = "ribscan.ini"

	KeyPDFFolder      = "path_pdf_folder"
	KeyScannerCommand = "path_naps2_command"
	KeyEmailCommand   = "path_thunderbird_command"
)

const (
	windowsScannerCommand = `C:\Program Files (x86)\NAPS2\naps2.console`
	windowsEmailCommand   = `C:\Program Files (x86)\Mozilla Thunderbird\thunderbird`
	linuxScannerScript    = "naps2.console.sh"
	linuxEmailCommand     = "/usr/bin/thunderbird"
	searchPathScanner     = "naps2.console"
	searchPathEmail       = "thunderbird"
)

// The INI library owns this switch. The [DEFAULT] header keeps the file
// readable by other INI readers.
func init() {
	ini.DefaultHeader = true
}

// Settings are the user editable values.
type Settings struct {
	PDFFolder      string
	ScannerCommand string
	EmailCommand   string
}

// Defaults returns the first-run settings for the given host OS. Hosts that
// are neither windows nor linux get bare command names and rely on the
// command search path.
func Defaults(goos, workDir string) Settings {
	s := Settings{PDFFolder: workDir}

	switch goos {
	case "windows":
		s.ScannerCommand = windowsScannerCommand
		s.EmailCommand = windowsEmailCommand
	case "linux":
		s.ScannerCommand = filepath.Join(workDir, linuxScannerScript)
		s.EmailCommand = linuxEmailCommand
	default:
		s.ScannerCommand = searchPathScanner
		s.EmailCommand = searchPathEmail
	}
	return s
}

type Store struct {
	path    string
	goos    string
	workDir string
	logger  logger.Logger
}

type Option func(*Store)

// WithGOOS overrides the host OS used to pick defaults.
func WithGOOS(goos string) Option {
	return func(s *Store) {
		s.goos = goos
	}
}

// WithWorkDir overrides the directory used for relative defaults.
func WithWorkDir(dir string) Option {
	return func(s *Store) {
		s.workDir = dir
	}
}

func WithLogger(log logger.Logger) Option {
	return func(s *Store) {
		s.logger = log
	}
}

// NewStore creates a store for the file at path. A relative path is
// resolved against the working directory.
func NewStore(path string, opts ...Option) (*Store, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	s := &Store{
		path:    path,
		goos:    runtime.GOOS,
		workDir: wd,
		logger:  logger.NoOp{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if !filepath.IsAbs(s.path) {
		s.path = filepath.Join(s.workDir, s.path)
	}
	return s, nil
}

// Path returns the absolute settings file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted settings. When the file does not exist the
// platform defaults are written to it first.
func (s *Store) Load() (Settings, error) {
	defaults := Defaults(s.goos, s.workDir)

	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("Settings", "no settings file, writing defaults", map[string]interface{}{
			"path": s.path,
			"goos": s.goos,
		})
		if err := s.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	} else if err != nil {
		return Settings{}, fmt.Errorf("stat settings file: %w", err)
	}

	file, err := ini.LoadSources(loadOptions(), s.path)
	if err != nil {
		return Settings{}, fmt.Errorf("parse settings file %s: %w", s.path, err)
	}

	section := file.Section(ini.DefaultSection)
	loaded := Settings{
		PDFFolder:      s.value(section, KeyPDFFolder, defaults.PDFFolder),
		ScannerCommand: s.value(section, KeyScannerCommand, defaults.ScannerCommand),
		EmailCommand:   s.value(section, KeyEmailCommand, defaults.EmailCommand),
	}

	s.logger.Debug("Settings", "settings loaded", map[string]interface{}{
		"path": s.path,
	})
	return loaded, nil
}

// Save rewrites the settings file with all three values.
func (s *Store) Save(settings Settings) error {
	file := ini.Empty(loadOptions())
	section := file.Section(ini.DefaultSection)
	section.Key(KeyPDFFolder).SetValue(settings.PDFFolder)
	section.Key(KeyScannerCommand).SetValue(settings.ScannerCommand)
	section.Key(KeyEmailCommand).SetValue(settings.EmailCommand)

	if err := file.SaveTo(s.path); err != nil {
		return fmt.Errorf("write settings file %s: %w", s.path, err)
	}

	s.logger.Info("Settings", "settings saved", map[string]interface{}{
		"path": s.path,
	})
	return nil
}

func (s *Store) value(section *ini.Section, key, fallback string) string {
	if !section.HasKey(key) {
		s.logger.Warning("Settings", "key missing, using default", map[string]interface{}{
			"key":     key,
			"default": fallback,
		})
		return fallback
	}
	return section.Key(key).Value()
}

func loadOptions() ini.LoadOptions {
	// Values are stored verbatim: a trailing backslash such as C:\ is not a
	// continuation and surrounding quotes are part of the value.
	return ini.LoadOptions{
		IgnoreInlineComment:     true,
		IgnoreContinuation:      true,
		PreserveSurroundedQuote: true,
	}
}
