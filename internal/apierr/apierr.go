// Package apierr define a taxonomia de erros da API e o corpo JSON de erro.
//
// Todo caminho de erro devolve {"error": <code>, "message": <texto>} com um
// status HTTP. Detalhes internos (erro original, corpo do upstream) ficam em
// Err e vão só para o log.
package apierr

import (
	"encoding/json"
	"errors"
	"net/http"
)

type Code string

const (
	MissingField      Code = "MISSING_FIELD"
	NoFile            Code = "NO_FILE"
	InputTooLong      Code = "INPUT_TOO_LONG"
	FileTooLarge      Code = "FILE_TOO_LARGE"
	InvalidFileType   Code = "INVALID_FILE_TYPE"
	InvalidRequest    Code = "INVALID_REQUEST"
	EmptyPDF          Code = "EMPTY_PDF"
	CorruptedPDF      Code = "CORRUPTED_PDF"
	ExtractionFailed  Code = "EXTRACTION_FAILED"
	APIError          Code = "API_ERROR"
	RateLimitExceeded Code = "RATE_LIMIT_EXCEEDED"
	ServiceOverloaded Code = "SERVICE_OVERLOADED"
)

type Error struct {
	Status  int
	Code    Code
	Message string
	// ResetInMinutes só é preenchido em RATE_LIMIT_EXCEEDED local.
	ResetInMinutes int
	Err            error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code Code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func Wrap(err error, status int, code Code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message, Err: err}
}

// Validation cria um erro 400.
func Validation(code Code, message string) *Error {
	return New(http.StatusBadRequest, code, message)
}

// RateLimited cria o erro de quota local esgotada.
func RateLimited(resetInMinutes int) *Error {
	e := New(http.StatusTooManyRequests, RateLimitExceeded, "Too many requests. Please try again later.")
	e.ResetInMinutes = resetInMinutes
	return e
}

// Internal esconde o erro original atrás de uma mensagem genérica.
func Internal(err error) *Error {
	return Wrap(err, http.StatusInternalServerError, APIError, "An unexpected error occurred. Please try again.")
}

type body struct {
	Error          Code   `json:"error"`
	Message        string `json:"message"`
	ResetInMinutes int    `json:"resetInMinutes,omitempty"`
}

// As converte qualquer erro em *Error; erros desconhecidos viram API_ERROR 500.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// Write escreve o corpo JSON de erro com o status correspondente.
func Write(w http.ResponseWriter, err error) *Error {
	e := As(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(body{Error: e.Code, Message: e.Message, ResetInMinutes: e.ResetInMinutes})
	return e
}
