package artifact

import (
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"
)

const pdfMIME = "application/pdf"

// Info describes a file produced by the scanner.
type Info struct {
	Path string
	Size int64
	MIME string
}

// IsPDF reports whether the detected content type is PDF.
func (i Info) IsPDF() bool {
	return i.MIME == pdfMIME
}

// Inspect stats path and sniffs its content type.
func Inspect(path string) (Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return Info{Path: path}, fmt.Errorf("stat %s: %w", path, err)
	}
	if stat.IsDir() {
		return Info{Path: path}, fmt.Errorf("%s is a directory", path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return Info{Path: path, Size: stat.Size()}, fmt.Errorf("detect type of %s: %w", path, err)
	}

	return Info{
		Path: path,
		Size: stat.Size(),
		MIME: mtype.String(),
	}, nil
}
