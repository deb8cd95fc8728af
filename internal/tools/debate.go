package tools

import (
	"encoding/json"
	"errors"
	"net/http"

	"ai-tools-gateway/internal/apierr"
	"ai-tools-gateway/internal/llm"
	"ai-tools-gateway/internal/parse"
	"ai-tools-gateway/internal/validate"
	"ai-tools-gateway/middleware/ratelimit"
)

const (
	maxDebateBody = 64 << 10

	DefaultScore    = 3
	DefaultFeedback = "Good effort! Try backing up your main point with a concrete example."
	DefaultReply    = "Interesting point. Can you explain what evidence supports it?"

	maxFeedbackChars = 200
	maxReplyChars    = 4000
)

type debateRequest struct {
	Theme      string `json:"theme" validate:"required,max=200"`
	Message    string `json:"message" validate:"required,max=2000"`
	Style      string `json:"style" validate:"required,oneof=kind balanced strict"`
	SessionID  string `json:"sessionId" validate:"required_if=NewSession true,max=100"`
	NewSession bool   `json:"newSession"`
}

// Scores são as notas 1..5 por critério.
type Scores struct {
	LogicalConsistency int `json:"logicalConsistency"`
	Evidence           int `json:"evidence"`
	Persuasiveness     int `json:"persuasiveness"`
	Clarity            int `json:"clarity"`
	Rebuttal           int `json:"rebuttal"`
}

type DebateResult struct {
	Reply     string `json:"reply"`
	Scores    Scores `json:"scores"`
	Feedback  string `json:"feedback"`
	Remaining *int   `json:"remaining,omitempty"`
}

// critérios na ordem pedida no prompt; o rótulo precisa bater com o do prompt
var criteria = []struct {
	label string
	field func(*Scores) *int
}{
	{"Logical Consistency", func(s *Scores) *int { return &s.LogicalConsistency }},
	{"Evidence", func(s *Scores) *int { return &s.Evidence }},
	{"Persuasiveness", func(s *Scores) *int { return &s.Persuasiveness }},
	{"Clarity", func(s *Scores) *int { return &s.Clarity }},
	{"Rebuttal", func(s *Scores) *int { return &s.Rebuttal }},
}

// ParseDebate extrai réplica, notas e feedback. Nunca falha: cada campo ausente
// ou fora do domínio recebe o valor padrão.
func ParseDebate(text string) DebateResult {
	var res DebateResult
	for _, c := range criteria {
		n, ok := parse.Score(text, c.label)
		*c.field(&res.Scores) = parse.OrInt(n, ok, DefaultScore)
	}

	fb, ok := parse.Line(text, "FEEDBACK")
	res.Feedback = parse.Truncate(parse.OrString(fb, ok, DefaultFeedback), maxFeedbackChars)

	reply, ok := parse.Section(text, "REPLY", "SCORES", "FEEDBACK")
	if !ok {
		reply, ok = parse.Before(text, "SCORES", "FEEDBACK")
	}
	res.Reply = parse.Truncate(parse.OrString(reply, ok, DefaultReply), maxReplyChars)
	return res
}

func (d Deps) debate(w http.ResponseWriter, r *http.Request) {
	var req debateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDebateBody))
	if err := dec.Decode(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			apierr.Write(w, apierr.Validation(apierr.InputTooLong, "Request body is too large."))
			return
		}
		apierr.Write(w, apierr.Wrap(err, http.StatusBadRequest, apierr.InvalidRequest, "Invalid JSON body."))
		return
	}
	validate.TrimSpace(&req.Theme, &req.Message, &req.Style, &req.SessionID)
	if err := validate.Struct(req); err != nil {
		apierr.Write(w, err)
		return
	}

	key := d.KeyFn(r)
	quota, ok := d.checkQuota(w, r, d.DebateQuota, key)
	if !ok {
		return
	}
	// sessão nova consome também a quota de sessões
	if req.NewSession {
		if _, ok := d.checkQuota(w, r, d.SessionQuota, ratelimit.SessionKey(key, req.SessionID)); !ok {
			return
		}
	}

	resp, ok := d.generate(w, r, llm.Request{
		System:      DebateSystemPrompt(req.Style),
		Prompt:      BuildDebatePrompt(req.Theme, req.Message),
		MaxTokens:   700,
		Temperature: 0.7,
	})
	if !ok {
		return
	}

	res := ParseDebate(resp.Text)
	if quota.Remaining >= 0 {
		rem := quota.Remaining
		res.Remaining = &rem
	}
	writeJSON(w, http.StatusOK, res)
}
