// Package upload parses multipart requests carrying a single file and the
// accompanying text fields.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"tlwd-backend/internal/domain/entity"
)

// DefaultMaxBytes is the largest accepted file.
const DefaultMaxBytes int64 = 10 << 20

var (
	ErrInvalidFileType = &entity.ValidationError{
		Field:   "file",
		Message: "Invalid file type. Only JPEG, PNG, GIF, PDF, DOC, and DOCX are allowed.",
	}
	ErrFileTooLarge = &entity.ValidationError{Field: "file", Message: "File too large"}
	ErrInvalidForm  = &entity.ValidationError{Field: "body", Message: "Invalid form data"}
)

// A file must match on both extension and MIME type.
var allowedExt = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true,
	".pdf": true, ".doc": true, ".docx": true,
}

var allowedMIME = map[string]bool{
	"image/jpeg":         true,
	"image/jpg":          true,
	"image/png":          true,
	"image/gif":          true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// Form is a parsed request. Asset is nil when no file was sent.
type Form struct {
	Fields map[string]any
	Asset  *entity.Asset
}

// Parser reads multipart requests.
type Parser struct {
	// MaxBytes caps the file size. Zero means DefaultMaxBytes.
	MaxBytes int64
	// Accept overrides the file type check. Nil means Allowed.
	Accept func(filename, contentType string) bool
}

// IsMultipart reports whether r carries a multipart body.
func IsMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mt, "multipart/")
}

// Parse reads the text fields of r and the first file found under one of
// fileFields. Repeated text fields keep their first value.
func (p Parser) Parse(r *http.Request, fileFields ...string) (*Form, error) {
	limit := p.maxBytes()
	// フォーム本体の余裕分
	r.Body = http.MaxBytesReader(nil, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrFileTooLarge
		}
		return nil, ErrInvalidForm
	}

	form := &Form{Fields: make(map[string]any, len(r.MultipartForm.Value))}
	for k, vs := range r.MultipartForm.Value {
		if len(vs) > 0 {
			form.Fields[k] = vs[0]
		}
	}

	for _, name := range fileFields {
		headers := r.MultipartForm.File[name]
		if len(headers) == 0 {
			continue
		}
		asset, err := p.read(headers[0])
		if err != nil {
			return nil, err
		}
		form.Asset = asset
		break
	}
	return form, nil
}

// File reads only the file part named field. A missing file is a
// ValidationError with message.
func (p Parser) File(r *http.Request, field, message string) (*entity.Asset, error) {
	form, err := p.Parse(r, field)
	if err != nil {
		return nil, err
	}
	if form.Asset == nil {
		return nil, &entity.ValidationError{Field: field, Message: message}
	}
	return form.Asset, nil
}

func (p Parser) read(fh *multipart.FileHeader) (*entity.Asset, error) {
	if fh.Size > p.maxBytes() {
		return nil, ErrFileTooLarge
	}
	contentType := fh.Header.Get("Content-Type")
	accept := p.Accept
	if accept == nil {
		accept = Allowed
	}
	if !accept(fh.Filename, contentType) {
		return nil, ErrInvalidFileType
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, p.maxBytes()+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > p.maxBytes() {
		return nil, ErrFileTooLarge
	}
	return &entity.Asset{
		Filename:    filepath.Base(fh.Filename),
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

// Allowed reports whether both the extension of filename and the MIME type
// are on the whitelist.
func Allowed(filename, contentType string) bool {
	if !allowedExt[strings.ToLower(filepath.Ext(filename))] {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return allowedMIME[strings.ToLower(mt)]
}

// CSV accepts comma separated files as browsers label them.
func CSV(filename, contentType string) bool {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch strings.ToLower(mt) {
	case "text/csv", "application/csv", "application/vnd.ms-excel", "text/plain", "application/octet-stream":
		return true
	}
	return false
}

func (p Parser) maxBytes() int64 {
	if p.MaxBytes > 0 {
		return p.MaxBytes
	}
	return DefaultMaxBytes
}
