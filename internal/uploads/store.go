package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/climate-finance-tracker/cft-backend/internal/metrics"
)

var (
	ErrNotPDF          = errors.New("only PDF files are allowed")
	ErrTooLarge        = errors.New("file exceeds the upload size limit")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrFileNotFound    = errors.New("file not found")
)

const (
	pdfMIME         = "application/pdf"
	maxNameAttempts = 100
)

var (
	unsafeChars     = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	timestampPrefix = regexp.MustCompile(`^\d+-`)
)

// Store writes supporting PDFs to a single directory. The stored filename
// is the durable reference kept in the database.
type Store struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

// SavedFile describes a file written by SavePDF.
type SavedFile struct {
	Name string
	Size int64
}

func NewStore(dir string, maxBytes int64) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: abs, maxBytes: maxBytes, now: time.Now}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// SavePDF validates the declared and sniffed content type and writes the file
// as "<unix-millis>-<sanitized-name>".
func (s *Store) SavePDF(fh *multipart.FileHeader) (*SavedFile, error) {
	if ct := fh.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, pdfMIME) {
		return nil, ErrNotPDF
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return nil, ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, fmt.Errorf("detect upload type: %w", err)
	}
	if !mt.Is(pdfMIME) {
		return nil, ErrNotPDF
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	name, dst, err := s.create(Sanitize(fh.Filename))
	if err != nil {
		return nil, err
	}

	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return nil, fmt.Errorf("write upload: %w", err)
	}

	metrics.UploadedBytes.Add(float64(n))
	return &SavedFile{Name: name, Size: n}, nil
}

// create opens a new file for base, moving the millisecond prefix forward
// while another upload already holds the name.
func (s *Store) create(base string) (string, *os.File, error) {
	ms := s.now().UnixMilli()
	for i := 0; i < maxNameAttempts; i++ {
		name := fmt.Sprintf("%d-%s", ms+int64(i), base)
		f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return name, f, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", nil, fmt.Errorf("create upload: %w", err)
		}
	}
	return "", nil, fmt.Errorf("create upload: no free name for %q after %d attempts", base, maxNameAttempts)
}

// Resolve maps a stored filename to its absolute path, refusing anything
// that would escape the upload directory.
func (s *Store) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return "", ErrInvalidFilename
	}

	full, err := filepath.Abs(filepath.Join(s.dir, name))
	if err != nil {
		return "", ErrInvalidFilename
	}
	if !strings.HasPrefix(full, s.dir+string(os.PathSeparator)) {
		return "", ErrInvalidFilename
	}
	return full, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Store) Remove(name string) error {
	path, err := s.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Sanitize keeps letters, digits, dot, dash and underscore.
func Sanitize(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	clean := strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "._")
	if clean == "" {
		return "document.pdf"
	}
	return clean
}

// DisplayName strips the timestamp prefix from a stored filename.
func DisplayName(stored string) string {
	return timestampPrefix.ReplaceAllString(stored, "")
}

// FormatSize renders a byte count the way the dashboard lists documents.
func FormatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(n)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
