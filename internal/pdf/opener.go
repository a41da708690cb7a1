package pdf

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Opener resolves stored PDF paths against the configured pdf_root and
// launches the configured reader.
type Opener struct {
	pdfRoot   string
	pdfReader string
}

// NewOpener creates an opener. An empty reader means the platform default
// (open on macOS, xdg-open on Linux).
func NewOpener(pdfRoot, pdfReader string) *Opener {
	return &Opener{pdfRoot: pdfRoot, pdfReader: pdfReader}
}

// ResolvePath turns a stored PDF path into an absolute path to an existing
// file. Absolute stored paths are used as-is; relative ones are joined to
// pdf_root.
func (o *Opener) ResolvePath(storedPath string) (string, error) {
	if storedPath == "" {
		return "", fmt.Errorf("no PDF path recorded")
	}

	fullPath := storedPath
	if !filepath.IsAbs(storedPath) {
		if o.pdfRoot == "" {
			return "", fmt.Errorf("pdf_root not configured")
		}
		fullPath = filepath.Join(o.pdfRoot, storedPath)
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("PDF not found: %s", fullPath)
		}
		return "", fmt.Errorf("checking PDF: %w", err)
	}

	return fullPath, nil
}

// Open launches the reader on an absolute PDF path without waiting for it
// to exit.
func (o *Opener) Open(fullPath string) error {
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("PDF not found: %s", fullPath)
		}
		return fmt.Errorf("checking PDF: %w", err)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = o.darwinCommand(fullPath)
	case "linux":
		cmd = o.linuxCommand(fullPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

func (o *Opener) darwinCommand(path string) *exec.Cmd {
	switch o.pdfReader {
	case "skim":
		return exec.Command("open", "-a", "Skim", path)
	case "preview":
		return exec.Command("open", "-a", "Preview", path)
	case "", "open":
		return exec.Command("open", path)
	default:
		return exec.Command(o.pdfReader, path)
	}
}

func (o *Opener) linuxCommand(path string) *exec.Cmd {
	switch o.pdfReader {
	case "", "xdg-open":
		return exec.Command("xdg-open", path)
	default:
		return exec.Command(o.pdfReader, path)
	}
}
