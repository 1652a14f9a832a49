package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

// fileHeader builds a multipart.FileHeader the way gin would hand it over.
func fileHeader(t *testing.T, filename, contentType, body string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), 1<<20)
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s
}

func TestSavePDF(t *testing.T) {
	s := newTestStore(t)

	saved, err := s.SavePDF(fileHeader(t, "Annual Report (2024).pdf", "application/pdf", samplePDF))
	require.NoError(t, err)
	assert.Equal(t, "1700000000000-Annual_Report_2024_.pdf", saved.Name)
	assert.Equal(t, int64(len(samplePDF)), saved.Size)

	data, err := os.ReadFile(filepath.Join(s.Dir(), saved.Name))
	require.NoError(t, err)
	assert.Equal(t, samplePDF, string(data))
}

func TestSavePDF_SameNameSameMillisecond(t *testing.T) {
	s := newTestStore(t)

	first, err := s.SavePDF(fileHeader(t, "plan.pdf", "application/pdf", samplePDF))
	require.NoError(t, err)
	second, err := s.SavePDF(fileHeader(t, "plan.pdf", "application/pdf", samplePDF))
	require.NoError(t, err)

	assert.Equal(t, "1700000000000-plan.pdf", first.Name)
	assert.Equal(t, "1700000000001-plan.pdf", second.Name)
	for _, name := range []string{first.Name, second.Name} {
		_, err := os.Stat(filepath.Join(s.Dir(), name))
		assert.NoError(t, err, name)
	}
}

func TestSavePDF_RejectsNonPDF(t *testing.T) {
	s := newTestStore(t)

	_, err := s.SavePDF(fileHeader(t, "notes.txt", "text/plain", "hello"))
	assert.ErrorIs(t, err, ErrNotPDF)

	// declared as pdf but the bytes are not
	_, err = s.SavePDF(fileHeader(t, "fake.pdf", "application/pdf", "<html></html>"))
	assert.ErrorIs(t, err, ErrNotPDF)
}

func TestSavePDF_RejectsOversized(t *testing.T) {
	s, err := NewStore(t.TempDir(), 10)
	require.NoError(t, err)

	_, err = s.SavePDF(fileHeader(t, "big.pdf", "application/pdf", samplePDF))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestResolve(t *testing.T) {
	s := newTestStore(t)

	for _, bad := range []string{"", "../secret", "a/b.pdf", "..", "..hidden.pdf"} {
		_, err := s.Resolve(bad)
		assert.ErrorIs(t, err, ErrInvalidFilename, bad)
	}

	path, err := s.Resolve("1700000000000-report.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), "1700000000000-report.pdf"), path)
}

func TestRemove_MissingIsNotAnError(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Remove("1700000000000-gone.pdf"))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "report.pdf", DisplayName("1700000000000-report.pdf"))
	assert.Equal(t, "report.pdf", DisplayName("report.pdf"))
	assert.Equal(t, "passwd", Sanitize("../../etc/passwd"))
	assert.Equal(t, "document.pdf", Sanitize("..."))
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.50 KB", FormatSize(1536))
	assert.Equal(t, "2.00 MB", FormatSize(2<<20))
}

func TestDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "1700000000000-report.pdf"), []byte(samplePDF), 0o644))

	router := gin.New()
	s.RegisterDownload(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/download/1700000000000-report.pdf", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rr.Header().Get("Content-Disposition"), `filename="report.pdf"`)
	assert.Equal(t, samplePDF, rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/download/1700000000000-missing.pdf", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/download/..hidden", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
