// Servidor falso da API de mensagens, para rodar o gateway localmente sem
// chave: ANTHROPIC_BASE_URL=http://localhost:8081 ANTHROPIC_API_KEY=x.
//
// MOCK_FAIL_STATUS=529 faz toda chamada falhar com o status informado.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const debateText = `REPLY:
That is a bold claim. What evidence shows the risk outweighs the benefits we already see?

SCORES:
Logical Consistency: 3/5
Evidence: 2/5
Persuasiveness: 3/5
Clarity: 4/5
Rebuttal: 2/5

FEEDBACK: Support your claim with a concrete example or source.
`

const summaryText = `SUMMARY:
The document describes a local test run of the summarizer.

KEY POINTS:
- The upstream is a mock server
- Answers follow the requested format
`

type messagesRequest struct {
	Model    string `json:"model"`
	System   string `json:"system"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newHandler(failStatus int, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/messages", func(w http.ResponseWriter, r *http.Request) {
		var req messagesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_error", "invalid JSON")
			return
		}
		if r.Header.Get("x-api-key") == "" {
			writeError(w, http.StatusUnauthorized, "authentication_error", "missing x-api-key")
			return
		}
		if failStatus != 0 {
			typ := "api_error"
			if failStatus == 529 {
				typ = "overloaded_error"
			}
			writeError(w, failStatus, typ, "mock failure")
			return
		}

		var prompt string
		if len(req.Messages) > 0 {
			prompt = req.Messages[len(req.Messages)-1].Content
		}
		text := debateText
		if strings.Contains(prompt, "KEY POINTS") {
			text = summaryText
		}
		logger.Info("mock generation", "model", req.Model, "prompt_chars", len(prompt))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "msg_" + uuid.NewString(),
			"type":  "message",
			"role":  "assistant",
			"model": req.Model,
			"content": []map[string]string{
				{"type": "text", "text": text},
			},
			"usage": map[string]int{"input_tokens": len(prompt) / 4, "output_tokens": len(text) / 4},
		})
	})
	return mux
}

func writeError(w http.ResponseWriter, status int, typ, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":  "error",
		"error": map[string]string{"type": typ, "message": msg},
	})
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}
	failStatus, _ := strconv.Atoi(os.Getenv("MOCK_FAIL_STATUS"))

	srv := &http.Server{
		Addr:              addr,
		Handler:           newHandler(failStatus, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("mock llm listening", "addr", addr, "fail_status", failStatus)
	if err := srv.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %s\n", err)
		os.Exit(1)
	}
}
