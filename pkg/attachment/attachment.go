// Package attachment validates, stages and promotes complaint file uploads.
//
// Files pass three independent checks (size ceiling, extension allow-list,
// declared content-type allow-list) plus a magic-byte sniff, then sit in a
// session-scoped temporary directory until the wizard commits. Promotion
// uploads them to durable object storage under keys namespaced by the
// complaint code.
package attachment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/empresasintegra/leykarin/pkg/model"
	"github.com/empresasintegra/leykarin/pkg/storage"
)

const DefaultMaxBytes = 500 * 1024 * 1024

var allowedExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".xlsx": true, ".xls": true, ".txt": true,
}

var allowedContentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel": true,
	"text/plain":               true,
}

// Office documents are zip containers and plain text sniffs with a charset
// suffix, so the sniffed set is wider than the declared one.
var allowedSniffedPrefixes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
	"image/gif",
	"text/plain",
	"application/zip",
	"application/msword",
	"application/vnd.",
	"application/octet-stream",
}

// RejectError describes why a single file was refused. It is a validation
// error: the caller surfaces it per-field and nothing is staged.
type RejectError struct {
	Name   string
	Reason string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("archivo %q rechazado: %s", e.Name, e.Reason)
}

// Staged describes one accepted file awaiting the wizard's final commit.
type Staged struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type Validator struct {
	MaxBytes int64
}

func NewValidator(maxBytes int64) *Validator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Validator{MaxBytes: maxBytes}
}

// Check runs the three declared checks. All must pass independently: a
// permitted extension with a forged disallowed MIME type is still rejected.
func (v *Validator) Check(name, contentType string, size int64) error {
	if size > v.MaxBytes {
		return &RejectError{Name: name, Reason: fmt.Sprintf("excede el tamaño máximo de %d bytes", v.MaxBytes)}
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return &RejectError{Name: name, Reason: fmt.Sprintf("extensión no permitida: %s", ext)}
	}
	declared := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if !allowedContentTypes[declared] {
		return &RejectError{Name: name, Reason: fmt.Sprintf("tipo de contenido no permitido: %s", declared)}
	}
	return nil
}

// CheckSniffed validates the content type detected from the file's first
// bytes against the sniffed allow-list.
func (v *Validator) CheckSniffed(name string, head []byte) error {
	detected := http.DetectContentType(head)
	for _, prefix := range allowedSniffedPrefixes {
		if strings.HasPrefix(detected, prefix) {
			return nil
		}
	}
	return &RejectError{Name: name, Reason: fmt.Sprintf("contenido del archivo no permitido: %s", detected)}
}

// Stager holds accepted files in a per-session temporary directory until the
// wizard commits or aborts.
type Stager struct {
	root string
}

func NewStager(root string) (*Stager, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging root: %w", err)
	}
	return &Stager{root: root}, nil
}

func (s *Stager) sessionDir(sid string) string {
	return filepath.Join(s.root, sid)
}

// Stage copies the file into the session directory, sniffing its first bytes
// on the way in. The validator must have accepted the declared metadata first.
func (s *Stager) Stage(sid string, v *Validator, name, contentType string, r io.Reader) (Staged, error) {
	dir := s.sessionDir(sid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Staged{}, fmt.Errorf("failed to create session staging dir: %w", err)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Staged{}, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]
	if err := v.CheckSniffed(name, head); err != nil {
		return Staged{}, err
	}

	dst := filepath.Join(dir, filepath.Base(name))
	f, err := os.Create(dst)
	if err != nil {
		return Staged{}, fmt.Errorf("failed to create staged file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), io.LimitReader(r, v.MaxBytes)))
	if err != nil {
		os.Remove(dst)
		return Staged{}, fmt.Errorf("failed to stage upload: %w", err)
	}
	if written > v.MaxBytes {
		os.Remove(dst)
		return Staged{}, &RejectError{Name: name, Reason: "excede el tamaño máximo permitido"}
	}

	return Staged{Path: dst, Name: filepath.Base(name), ContentType: contentType, Size: written}, nil
}

// Discard removes every staged file of a session. Called on wizard abort and
// after a successful commit.
func (s *Stager) Discard(sid string) error {
	return os.RemoveAll(s.sessionDir(sid))
}

// Pipeline moves staged files into durable object storage.
type Pipeline struct {
	store  storage.ObjectStore
	logger *zap.Logger
}

func NewPipeline(store storage.ObjectStore, logger *zap.Logger) *Pipeline {
	return &Pipeline{store: store, logger: logger}
}

// Promote uploads every staged file under "<code>/<filename>" and returns the
// attachment rows to persist plus the uploaded keys for rollback.
func (p *Pipeline) Promote(ctx context.Context, code string, staged []Staged) ([]model.Attachment, []string, error) {
	attachments := make([]model.Attachment, 0, len(staged))
	keys := make([]string, 0, len(staged))

	for _, file := range staged {
		f, err := os.Open(file.Path)
		if err != nil {
			p.Rollback(ctx, keys)
			return nil, nil, fmt.Errorf("failed to open staged file %s: %w", file.Name, err)
		}

		key := fmt.Sprintf("%s/%s", code, file.Name)
		url, err := p.store.Put(ctx, key, file.ContentType, f, file.Size)
		f.Close()
		if err != nil {
			p.Rollback(ctx, keys)
			return nil, nil, fmt.Errorf("failed to promote %s: %w", file.Name, err)
		}

		keys = append(keys, key)
		attachments = append(attachments, model.Attachment{
			ComplaintCode: code,
			ObjectKey:     key,
			URL:           url,
			Name:          file.Name,
			Size:          file.Size,
		})
	}

	return attachments, keys, nil
}

// Rollback deletes already-uploaded objects best-effort after a failed commit.
func (p *Pipeline) Rollback(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := p.store.Delete(ctx, key); err != nil {
			p.logger.Warn("failed to delete orphaned object", zap.String("key", key), zap.Error(err))
		}
	}
}
