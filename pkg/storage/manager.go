package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	errs "patreonscraper/pkg/errors"
)

// invalidNameChars are stripped from every folder and file name
const invalidNameChars = `<>:"/\|?*`

// Manager creates the output tree for downloaded posts
type Manager struct {
	outputDir string
	dirPerm   os.FileMode
	filePerm  os.FileMode

	mu           sync.Mutex
	filesWritten int
	bytesWritten int64
}

// Option configures a Manager
type Option func(*Manager)

// WithPermissions sets the modes used for created folders and files
func WithPermissions(dirPerm, filePerm os.FileMode) Option {
	return func(m *Manager) {
		m.dirPerm = dirPerm
		m.filePerm = filePerm
	}
}

// NewManager creates a new storage manager rooted at outputDir
func NewManager(outputDir string, opts ...Option) (*Manager, error) {
	m := &Manager{
		outputDir: outputDir,
		dirPerm:   0755,
		filePerm:  0644,
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := os.MkdirAll(outputDir, m.dirPerm); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to create output directory")
	}

	return m, nil
}

// SanitizeName removes characters that are not allowed in file names
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidNameChars, r) {
			return -1
		}
		return r
	}, name)
}

// CreateFolder creates the sanitized folder name under parent and returns its path.
// An empty parent means the output directory. Existing folders are reused.
func (m *Manager) CreateFolder(name, parent string) (string, error) {
	clean, err := checkName(name)
	if err != nil {
		return "", err
	}
	if parent == "" {
		parent = m.outputDir
	}

	path := filepath.Join(parent, clean)
	if err := os.MkdirAll(path, m.dirPerm); err != nil {
		return "", errs.Wrap(errs.ErrorTypeFilesystem, err, fmt.Sprintf("failed to create folder %q", path))
	}
	return path, nil
}

// CreateFile writes r to the sanitized file name inside folder and returns its path.
// Data goes to a temporary file first so a failed write never leaves a partial file.
func (m *Manager) CreateFile(name, folder string, r io.Reader) (string, error) {
	clean, err := checkName(name)
	if err != nil {
		return "", err
	}

	filename := filepath.Join(folder, clean)
	tempFile := filename + ".tmp"

	out, err := os.OpenFile(tempFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, m.filePerm)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to create temporary file")
	}

	n, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		// Typed errors come from the source reader and keep their kind
		if errs.TypeOf(err) != errs.ErrorTypeUnknown {
			return "", err
		}
		return "", errs.Wrap(errs.ErrorTypeFilesystem, err, fmt.Sprintf("failed to write %q", filename))
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return "", errs.Wrap(errs.ErrorTypeFilesystem, closeErr, "failed to close file")
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return "", errs.Wrap(errs.ErrorTypeFilesystem, err, "failed to rename temporary file")
	}

	m.mu.Lock()
	m.filesWritten++
	m.bytesWritten += n
	m.mu.Unlock()

	return filename, nil
}

// WriteFile writes data to the sanitized file name inside folder
func (m *Manager) WriteFile(name, folder string, data []byte) (string, error) {
	return m.CreateFile(name, folder, bytes.NewReader(data))
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// GetFilesWritten returns the number of files written by this manager
func (m *Manager) GetFilesWritten() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filesWritten
}

// GetBytesWritten returns the total number of bytes written by this manager
func (m *Manager) GetBytesWritten() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bytesWritten
}

func checkName(name string) (string, error) {
	clean := SanitizeName(name)
	if strings.TrimSpace(clean) == "" || clean == "." || clean == ".." {
		return "", errs.New(errs.ErrorTypeFilesystem, fmt.Sprintf("invalid name %q", name))
	}
	return clean, nil
}
