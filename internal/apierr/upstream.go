package apierr

import (
	"errors"
	"net/http"

	"ai-tools-gateway/internal/llm"
)

// FromUpstream classifica uma falha da chamada ao serviço de geração.
//
//	401/403, sem API key        -> 500 API_ERROR (configuração)
//	429, throttle local         -> 429 RATE_LIMIT_EXCEEDED
//	529/503, overloaded_error   -> 503 SERVICE_OVERLOADED
//	demais                      -> 500 API_ERROR
func FromUpstream(err error) *Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, llm.ErrNotConfigured) {
		return Wrap(err, http.StatusInternalServerError, APIError, "Service configuration error.")
	}
	if errors.Is(err, llm.ErrThrottled) {
		return Wrap(err, http.StatusTooManyRequests, RateLimitExceeded, "The service is busy. Please try again in a moment.")
	}

	var ue *llm.UpstreamError
	if errors.As(err, &ue) {
		switch {
		case ue.StatusCode == http.StatusUnauthorized || ue.StatusCode == http.StatusForbidden:
			return Wrap(err, http.StatusInternalServerError, APIError, "Service configuration error.")
		case ue.StatusCode == http.StatusTooManyRequests:
			return Wrap(err, http.StatusTooManyRequests, RateLimitExceeded, "The service is busy. Please try again in a moment.")
		case ue.Overloaded() || ue.StatusCode == http.StatusServiceUnavailable:
			return Wrap(err, http.StatusServiceUnavailable, ServiceOverloaded, "The service is temporarily overloaded. Please try again later.")
		}
	}
	return Internal(err)
}
