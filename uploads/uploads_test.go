package uploads

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"cafesantander/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

// fileHeaders builds real multipart headers the way a request parser would.
func fileHeaders(t *testing.T, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, data := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["files"]
}

func TestSaveImage(t *testing.T) {
	svc := New(t.TempDir(), 0)
	fh := fileHeaders(t, map[string][]byte{"Mi Café Foto.PNG": pngHeader})[0]

	f, err := svc.Save(fh)
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.MimeType)
	assert.Equal(t, "Mi Café Foto.PNG", f.OriginalName)
	assert.Regexp(t, `^mi-caf--foto-\d+-[0-9a-f]{8}\.png$`, f.Filename)
	assert.Equal(t, "/public/uploads/"+f.Filename, f.URL)
	assert.FileExists(t, filepath.Join(svc.Dir, f.Filename))

	listed, err := svc.List()
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, f.Filename, listed[0].Filename)
	assert.Equal(t, int64(len(pngHeader)), listed[0].Size)
}

func TestSaveRejectsDisallowedType(t *testing.T) {
	svc := New(t.TempDir(), 0)
	fh := fileHeaders(t, map[string][]byte{"run.sh": []byte("\x7fELF\x02\x01\x01\x00\x00\x00\x00\x00\x00\x00\x00\x00")})[0]

	_, err := svc.Save(fh)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	entries, _ := os.ReadDir(svc.Dir)
	assert.Empty(t, entries)
}

func TestSaveAcceptsPlainText(t *testing.T) {
	svc := New(t.TempDir(), 0)
	fh := fileHeaders(t, map[string][]byte{"notes.txt": []byte("horario: 8 a 20")})[0]

	f, err := svc.Save(fh)
	require.NoError(t, err)
	assert.Contains(t, f.MimeType, "text/plain")
}

func TestSaveEnforcesSizeLimit(t *testing.T) {
	svc := New(t.TempDir(), 8)
	fh := fileHeaders(t, map[string][]byte{"big.png": pngHeader})[0]

	_, err := svc.Save(fh)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSaveAll(t *testing.T) {
	svc := New(t.TempDir(), 0)
	fhs := fileHeaders(t, map[string][]byte{"a.png": pngHeader, "b.txt": []byte("hola")})

	files, err := svc.SaveAll(fhs)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = svc.SaveAll(nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// One bad file rolls back the ones stored before it
	bad := fileHeaders(t, map[string][]byte{"c.png": pngHeader, "d.bin": {0x7f, 'E', 'L', 'F', 2, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0}})
	_, err = svc.SaveAll(bad)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	listed, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestListGalleryFiltersMedia(t *testing.T) {
	root := t.TempDir()
	svc := New(root, 0)
	require.NoError(t, os.MkdirAll(svc.GalleryDir, 0o755))
	for _, name := range []string{"playa.jpg", "video.mp4", "README.md", "index.html"} {
		require.NoError(t, os.WriteFile(filepath.Join(svc.GalleryDir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(svc.GalleryDir, "sub"), 0o755))

	files, err := svc.ListGallery()
	require.NoError(t, err)
	names := []string{}
	for _, f := range files {
		names = append(names, f.Filename)
		assert.Equal(t, "/public/turismo/"+f.Filename, f.URL)
	}
	assert.ElementsMatch(t, []string{"playa.jpg", "video.mp4"}, names)
}

func TestListMissingDirectoryIsEmpty(t *testing.T) {
	svc := New(filepath.Join(t.TempDir(), "nope"), 0)
	files, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestPathAndDelete(t *testing.T) {
	root := t.TempDir()
	svc := New(root, 0)
	require.NoError(t, os.MkdirAll(svc.Dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(svc.Dir, "menu.pdf"), []byte("%PDF-1.4"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("x"), 0o644))

	p, err := svc.Path("menu.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(svc.Dir, "menu.pdf"), p)

	for _, name := range []string{"", ".", "..", "../secret.txt", `..\secret.txt`, "missing.pdf"} {
		_, err := svc.Path(name)
		assert.ErrorIs(t, err, apperr.ErrNotFound, name)
	}

	require.NoError(t, svc.Delete("menu.pdf"))
	assert.NoFileExists(t, p)
	assert.ErrorIs(t, svc.Delete("menu.pdf"), apperr.ErrNotFound)
}
