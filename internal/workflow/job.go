package workflow

import (
	"path/filepath"
	"strings"
	"time"

	"ribscan/internal/runner"
)

// FileNameLayout gives names like 2026-10-19_14.03.59.pdf. Two jobs started
// within the same second share a name.
const FileNameLayout = "2006-01-02_15.04.05"

// Job is one scan-and-email cycle. It lives only in memory; the PDF it
// names is the durable result.
type Job struct {
	ID         string
	OutputPath string
	StartedAt  time.Time
}

func NewJob(id, folder string, startedAt time.Time) Job {
	return Job{
		ID:         id,
		OutputPath: OutputPath(folder, startedAt),
		StartedAt:  startedAt,
	}
}

// OutputPath joins folder with a timestamped PDF name.
func OutputPath(folder string, at time.Time) string {
	return filepath.Join(folder, at.Format(FileNameLayout)+".pdf")
}

func ScanCommand(scanner, output string) runner.Command {
	return runner.NewCommand(scanner, "-o", output)
}

func EmailCommand(email, output string) runner.Command {
	return runner.NewCommand(email, "-compose", "attachment='"+output+"'")
}

// ScanErrors splits scanner output into its non-empty lines. The scanner
// writes one error message per line to stdout.
func ScanErrors(stdout string) []string {
	return strings.FieldsFunc(stdout, func(r rune) bool {
		return r == '\n' || r == '\r'
	})
}
