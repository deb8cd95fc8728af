package tools

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"ai-tools-gateway/internal/apierr"
	"ai-tools-gateway/internal/llm"
	"ai-tools-gateway/internal/parse"
	"ai-tools-gateway/internal/pdftext"
	"ai-tools-gateway/internal/validate"
	"ai-tools-gateway/middleware/observe"
)

const (
	// folga para os cabeçalhos multipart além do arquivo
	multipartOverhead = 1 << 20
	maxKeyPoints      = 10

	DefaultSummary = "We could not produce a structured summary for this document. Please try again."
)

type summarizeOptions struct {
	Length string `form:"length" validate:"omitempty,oneof=short medium long"`
}

type SummaryMeta struct {
	FileName   string `json:"fileName"`
	Pages      int    `json:"pages"`
	Characters int    `json:"characters"`
	Truncated  bool   `json:"truncated"`
	Length     string `json:"length"`
	Model      string `json:"model,omitempty"`
}

type SummaryResult struct {
	Summary   string      `json:"summary"`
	KeyPoints []string    `json:"keyPoints"`
	Meta      SummaryMeta `json:"meta"`
}

// ParseSummary extrai resumo e pontos-chave; sem seções reconhecíveis, o texto
// inteiro vira o resumo.
func ParseSummary(text string) (summary string, points []string) {
	s, ok := parse.Section(text, "SUMMARY", "KEY POINTS")
	if !ok {
		s, ok = parse.Before(text, "KEY POINTS")
	}
	summary = parse.OrString(s, ok, DefaultSummary)

	points = []string{}
	if kp, ok := parse.Section(text, "KEY POINTS"); ok {
		points = parse.Bullets(kp)
		if len(points) > maxKeyPoints {
			points = points[:maxKeyPoints]
		}
	}
	return summary, points
}

func (d Deps) summarize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, validate.MaxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(validate.MaxFileSize + multipartOverhead); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			apierr.Write(w, apierr.Validation(apierr.FileTooLarge, "File must be at most 10 MB."))
			return
		}
		apierr.Write(w, apierr.Wrap(err, http.StatusBadRequest, apierr.NoFile, "No file was uploaded."))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, hdr, err := r.FormFile("file")
	if err != nil {
		apierr.Write(w, apierr.Wrap(err, http.StatusBadRequest, apierr.NoFile, "No file was uploaded."))
		return
	}
	defer file.Close()

	if err := validate.PDF.Check(hdr.Filename, hdr.Header.Get("Content-Type"), hdr.Size); err != nil {
		apierr.Write(w, err)
		return
	}

	opts := summarizeOptions{Length: r.FormValue("length")}
	validate.TrimSpace(&opts.Length)
	if err := validate.Struct(opts); err != nil {
		apierr.Write(w, err)
		return
	}
	if opts.Length == "" {
		opts.Length = "medium"
	}

	// extração é local: PDF ruim não consome quota
	doc, err := d.Extractor.Extract(r.Context(), file, hdr.Size)
	if err != nil {
		e := extractionError(err)
		observe.Logger(r.Context()).Warn("pdf extraction failed", "code", e.Code, "file", hdr.Filename, "err", err)
		apierr.Write(w, e)
		return
	}

	if _, ok := d.checkQuota(w, r, d.SummaryQuota, d.KeyFn(r)); !ok {
		return
	}

	resp, ok := d.generate(w, r, llm.Request{
		System:      SummarySystemPrompt,
		Prompt:      BuildSummaryPrompt(doc.Text, opts.Length),
		MaxTokens:   1024,
		Temperature: 0.3,
	})
	if !ok {
		return
	}

	summary, points := ParseSummary(resp.Text)
	writeJSON(w, http.StatusOK, SummaryResult{
		Summary:   summary,
		KeyPoints: points,
		Meta: SummaryMeta{
			FileName:   hdr.Filename,
			Pages:      doc.Pages,
			Characters: utf8.RuneCountInString(doc.Text),
			Truncated:  doc.Truncated,
			Length:     opts.Length,
			Model:      resp.Model,
		},
	})
}

func extractionError(err error) *apierr.Error {
	switch {
	case errors.Is(err, pdftext.ErrEmpty):
		return apierr.Wrap(err, http.StatusBadRequest, apierr.EmptyPDF, "The PDF has no extractable text.")
	case errors.Is(err, pdftext.ErrCorrupted):
		return apierr.Wrap(err, http.StatusBadRequest, apierr.CorruptedPDF, "The PDF file appears to be corrupted.")
	}
	return apierr.Wrap(err, http.StatusInternalServerError, apierr.ExtractionFailed, "Could not read the PDF file.")
}
