package validate

import (
	"fmt"
	"mime"
	"path/filepath"
	"slices"
	"strings"

	"ai-tools-gateway/internal/apierr"
)

// MaxFileSize é o limite de upload (10 MiB).
const MaxFileSize int64 = 10 << 20

// FileRules descreve o que um endpoint aceita como upload.
type FileRules struct {
	MaxSize    int64
	Extensions []string
	MIMETypes  []string
}

// PDF aceita apenas arquivos .pdf com MIME application/pdf até 10 MiB.
var PDF = FileRules{
	MaxSize:    MaxFileSize,
	Extensions: []string{".pdf"},
	MIMETypes:  []string{"application/pdf"},
}

// Check valida nome, Content-Type e tamanho do arquivo.
// A extensão é verificada independentemente do MIME informado pelo cliente.
func (r FileRules) Check(name, contentType string, size int64) error {
	if strings.TrimSpace(name) == "" {
		return apierr.Validation(apierr.NoFile, "No file was uploaded.")
	}
	if r.MaxSize > 0 && size > r.MaxSize {
		return apierr.Validation(apierr.FileTooLarge, fmt.Sprintf("File must be at most %d MB.", r.MaxSize>>20))
	}

	ext := strings.ToLower(filepath.Ext(name))
	if len(r.Extensions) > 0 && !slices.Contains(r.Extensions, ext) {
		return apierr.Validation(apierr.InvalidFileType, "Unsupported file type.")
	}

	mt, _, err := mime.ParseMediaType(contentType)
	if len(r.MIMETypes) > 0 && (err != nil || !slices.Contains(r.MIMETypes, strings.ToLower(mt))) {
		return apierr.Validation(apierr.InvalidFileType, "Unsupported file type.")
	}
	return nil
}
