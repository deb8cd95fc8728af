// Package pdftext extrai o texto de um PDF enviado pelo cliente.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrEmpty indica PDF válido sem texto extraível (ex.: só imagens).
	ErrEmpty = errors.New("pdftext: no extractable text")
	// ErrCorrupted indica arquivo que não é um PDF legível.
	ErrCorrupted = errors.New("pdftext: corrupted pdf")
)

var magic = []byte("%PDF-")

type Document struct {
	Text      string
	Pages     int
	Truncated bool
}

// Extractor abstrai a extração para que os handlers possam ser testados sem PDFs reais.
type Extractor interface {
	Extract(ctx context.Context, r io.ReaderAt, size int64) (Document, error)
}

// PDFExtractor usa github.com/ledongthuc/pdf.
type PDFExtractor struct {
	// MaxChars limita o texto devolvido (0 = sem limite).
	MaxChars int
}

func (e PDFExtractor) Extract(ctx context.Context, r io.ReaderAt, size int64) (doc Document, err error) {
	if size <= 0 {
		return Document{}, ErrEmpty
	}

	head := make([]byte, len(magic))
	if _, err := r.ReadAt(head, 0); err != nil || !bytes.Equal(head, magic) {
		return Document{}, ErrCorrupted
	}

	// o parser entra em panic com alguns arquivos malformados
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = Document{}, fmt.Errorf("%w: %v", ErrCorrupted, rec)
		}
	}()

	rd, err := pdf.NewReader(r, size)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	plain, err := rd.GetPlainText()
	if err != nil {
		return Document{}, fmt.Errorf("pdftext: extract: %w", err)
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return Document{}, fmt.Errorf("pdftext: read text: %w", err)
	}

	text := strings.Join(strings.Fields(string(raw)), " ")
	if text == "" {
		return Document{}, ErrEmpty
	}

	doc = Document{Text: text, Pages: rd.NumPage()}
	if e.MaxChars > 0 {
		if runes := []rune(text); len(runes) > e.MaxChars {
			doc.Text = string(runes[:e.MaxChars])
			doc.Truncated = true
		}
	}
	return doc, nil
}
