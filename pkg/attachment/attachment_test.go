package attachment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestValidatorAcceptsAllowedFile(t *testing.T) {
	v := NewValidator(0)
	assert.NoError(t, v.Check("evidencia.pdf", "application/pdf", 1024))
	assert.NoError(t, v.Check("FOTO.JPG", "image/jpeg", 1024))
	assert.NoError(t, v.Check("notas.txt", "text/plain; charset=utf-8", 10))
}

func TestValidatorRejectsDisallowedExtension(t *testing.T) {
	v := NewValidator(0)
	err := v.Check("malware.exe", "application/pdf", 10)
	var reject *RejectError
	require.ErrorAs(t, err, &reject)
	assert.Contains(t, reject.Reason, ".exe")
}

func TestValidatorRejectsOversizedFile(t *testing.T) {
	v := NewValidator(100)
	err := v.Check("grande.pdf", "application/pdf", 101)
	var reject *RejectError
	require.ErrorAs(t, err, &reject)
}

// A permitted extension with a forged disallowed MIME type is still rejected.
func TestValidatorRejectsForgedContentType(t *testing.T) {
	v := NewValidator(0)
	err := v.Check("evidencia.pdf", "application/x-msdownload", 10)
	var reject *RejectError
	require.ErrorAs(t, err, &reject)
	assert.Contains(t, reject.Reason, "tipo de contenido")
}

func TestStageAndDiscard(t *testing.T) {
	stager, err := NewStager(t.TempDir())
	require.NoError(t, err)
	v := NewValidator(0)

	staged, err := stager.Stage("sess-1", v, "notas.txt", "text/plain", strings.NewReader("contenido de prueba"))
	require.NoError(t, err)
	assert.Equal(t, "notas.txt", staged.Name)
	assert.EqualValues(t, len("contenido de prueba"), staged.Size)
	assert.FileExists(t, staged.Path)

	require.NoError(t, stager.Discard("sess-1"))
	_, statErr := os.Stat(staged.Path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestStageRejectsSniffedHTML(t *testing.T) {
	stager, err := NewStager(t.TempDir())
	require.NoError(t, err)
	v := NewValidator(0)

	payload := "<!DOCTYPE html><html><body>phish</body></html>"
	_, err = stager.Stage("sess-2", v, "pagina.txt", "text/plain", strings.NewReader(payload))
	var reject *RejectError
	require.ErrorAs(t, err, &reject)
}

type fakeObjectStore struct {
	objects map[string][]byte
	deleted []string
	failOn  string
}

func (f *fakeObjectStore) Put(_ context.Context, key, _ string, r io.Reader, _ int64) (string, error) {
	if key == f.failOn {
		return "", errors.New("storage unreachable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

func stageFiles(t *testing.T, stager *Stager, sid string, names ...string) []Staged {
	t.Helper()
	v := NewValidator(0)
	staged := make([]Staged, 0, len(names))
	for _, name := range names {
		s, err := stager.Stage(sid, v, name, "text/plain", bytes.NewReader([]byte("datos "+name)))
		require.NoError(t, err)
		staged = append(staged, s)
	}
	return staged
}

func TestPromoteUploadsUnderComplaintCode(t *testing.T) {
	stager, err := NewStager(t.TempDir())
	require.NoError(t, err)
	staged := stageFiles(t, stager, "sess-3", "uno.txt", "dos.txt")

	store := &fakeObjectStore{}
	pipeline := NewPipeline(store, zap.NewNop())

	attachments, keys, err := pipeline.Promote(context.Background(), "DN-ABCD1234", staged)
	require.NoError(t, err)
	require.Len(t, attachments, 2)
	assert.Equal(t, []string{"DN-ABCD1234/uno.txt", "DN-ABCD1234/dos.txt"}, keys)
	assert.Equal(t, "https://cdn.test/DN-ABCD1234/uno.txt", attachments[0].URL)
	assert.Equal(t, "DN-ABCD1234", attachments[0].ComplaintCode)
}

func TestPromoteRollsBackOnFailure(t *testing.T) {
	stager, err := NewStager(t.TempDir())
	require.NoError(t, err)
	staged := stageFiles(t, stager, "sess-4", "uno.txt", "dos.txt")

	store := &fakeObjectStore{failOn: fmt.Sprintf("DN-XYZ/%s", "dos.txt")}
	pipeline := NewPipeline(store, zap.NewNop())

	_, _, err = pipeline.Promote(context.Background(), "DN-XYZ", staged)
	require.Error(t, err)
	assert.Equal(t, []string{"DN-XYZ/uno.txt"}, store.deleted)
	assert.Empty(t, store.objects)
}
