// uploads.go - Stores uploaded media under the public directory and lists galleries

package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"cafesantander/apperr"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// DefaultMaxBytes is the per-file size limit.
const DefaultMaxBytes int64 = 100 << 20

// MaxFiles bounds a multi-file upload.
const MaxFiles = 10

// Allowed content types, detected from the file bytes rather than the client's header.
var allowedTypes = []string{
	"image/jpeg", "image/png", "image/gif", "image/webp",
	"video/mp4", "video/webm", "video/mpeg", "video/quicktime",
	"application/pdf", "text/plain", "application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// galleryExts are the media files shown in the tourism gallery.
var galleryExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".mp4": true, ".webm": true,
}

// File describes one stored file.
type File struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName,omitempty"`
	MimeType     string    `json:"mimetype,omitempty"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	Modified     time.Time `json:"modified"`
}

// Service manages two folders below the public root: uploads/ (writable) and turismo/ (read-only gallery).
type Service struct {
	Dir        string
	URLPrefix  string
	GalleryDir string
	GalleryURL string
	MaxBytes   int64
}

// New returns a Service rooted at publicDir, which is served under /public.
func New(publicDir string, maxBytes int64) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Service{
		Dir:        filepath.Join(publicDir, "uploads"),
		URLPrefix:  "/public/uploads/",
		GalleryDir: filepath.Join(publicDir, "turismo"),
		GalleryURL: "/public/turismo/",
		MaxBytes:   maxBytes,
	}
}

// Save validates and stores one multipart file under a unique name.
func (s *Service) Save(fh *multipart.FileHeader) (File, error) {
	if fh == nil {
		return File{}, apperr.Validation("no file provided")
	}
	if fh.Size > s.MaxBytes {
		return File{}, apperr.Validation(fmt.Sprintf("file %s exceeds the %d MB limit", fh.Filename, s.MaxBytes>>20))
	}

	src, err := fh.Open()
	if err != nil {
		return File{}, apperr.Unexpected("failed to read upload", err)
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return File{}, apperr.Unexpected("failed to read upload", err)
	}
	if !mimetype.EqualsAny(mt.String(), allowedTypes...) && !allowedAlias(mt) {
		return File{}, apperr.Validation(fmt.Sprintf("file type %s is not allowed", mt.String()))
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return File{}, apperr.Unexpected("failed to read upload", err)
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return File{}, apperr.Unexpected("failed to prepare upload directory", err)
	}
	name := uniqueName(fh.Filename, mt)
	dst, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return File{}, apperr.Unexpected("failed to store upload", err)
	}
	written, err := io.Copy(dst, io.LimitReader(src, s.MaxBytes+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > s.MaxBytes {
		err = apperr.Validation(fmt.Sprintf("file %s exceeds the %d MB limit", fh.Filename, s.MaxBytes>>20))
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.Dir, name))
		if apperr.KindOf(err) == apperr.KindValidation {
			return File{}, err
		}
		return File{}, apperr.Unexpected("failed to store upload", err)
	}

	return File{
		Filename:     name,
		OriginalName: fh.Filename,
		MimeType:     mt.String(),
		Size:         written,
		URL:          s.URLPrefix + name,
		Modified:     time.Now(),
	}, nil
}

// SaveAll stores up to MaxFiles files. On the first failure the files already stored are removed.
func (s *Service) SaveAll(fhs []*multipart.FileHeader) ([]File, error) {
	if len(fhs) == 0 {
		return nil, apperr.Validation("no files provided")
	}
	if len(fhs) > MaxFiles {
		return nil, apperr.Validation(fmt.Sprintf("at most %d files per upload", MaxFiles))
	}
	out := make([]File, 0, len(fhs))
	for _, fh := range fhs {
		f, err := s.Save(fh)
		if err != nil {
			for _, done := range out {
				_ = os.Remove(filepath.Join(s.Dir, done.Filename))
			}
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// allowedAlias accepts registered aliases of an allowed type.
func allowedAlias(mt *mimetype.MIME) bool {
	for _, a := range allowedTypes {
		if mt.Is(a) {
			return true
		}
	}
	return false
}

// uniqueName builds <base>-<unix millis>-<8 hex chars><ext>.
func uniqueName(original string, mt *mimetype.MIME) string {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ext = mt.Extension()
	}
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToLower(r)
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if len(base) > 40 {
		base = base[:40]
	}
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%s-%d-%s%s", base, time.Now().UnixMilli(), uuid.NewString()[:8], ext)
}

// List returns the uploaded files, newest first.
func (s *Service) List() ([]File, error) {
	return listDir(s.Dir, s.URLPrefix, func(string) bool { return true })
}

// ListGallery returns the images and videos of the tourism gallery.
func (s *Service) ListGallery() ([]File, error) {
	return listDir(s.GalleryDir, s.GalleryURL, func(name string) bool {
		return galleryExts[strings.ToLower(filepath.Ext(name))]
	})
}

func listDir(dir, urlPrefix string, keep func(string) bool) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []File{}, nil
	}
	if err != nil {
		return nil, apperr.Unexpected("failed to list files", err)
	}
	out := []File{}
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") || !keep(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue // removed while listing
		}
		out = append(out, File{Filename: e.Name(), Size: info.Size(), URL: urlPrefix + e.Name(), Modified: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Modified.Equal(out[j].Modified) {
			return out[i].Filename < out[j].Filename
		}
		return out[i].Modified.After(out[j].Modified)
	})
	return out, nil
}

// Path resolves filename inside the uploads folder. Names that would leave it are NotFound.
func (s *Service) Path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || filename == "." || filename == ".." || strings.ContainsAny(filename, `/\`) {
		return "", apperr.NotFound("file not found")
	}
	p := filepath.Join(s.Dir, filename)
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return "", apperr.NotFound("file not found")
	}
	return p, nil
}

// Delete removes an uploaded file.
func (s *Service) Delete(filename string) error {
	p, err := s.Path(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return apperr.Unexpected("failed to delete file", err)
	}
	return nil
}
