package material

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rx3lixir/prodhack/internal/battle"
	"github.com/rx3lixir/prodhack/pkg/logger"
)

const (
	// MaxTopics caps the suggested focus topics per document
	MaxTopics = 10

	// DefaultStudyDuration suggested alongside generated material (seconds)
	DefaultStudyDuration = battle.DefaultStudyDuration
)

// Analysis is the study material derived from one uploaded document.
// The room logic is agnostic to whether it is AI-derived or fallback.
type Analysis struct {
	Topics        []string          `json:"topics"`
	Quiz          []battle.Question `json:"quiz"`
	StudyDuration int               `json:"studyDuration"`
	IsFallback    bool              `json:"isFallback,omitempty"`
}

// Service turns uploaded PDFs into study topics and a quiz via a
// generative AI API. Every failure path substitutes the fixed-shape
// fallback payload; callers never see an error.
type Service struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	log        *logger.Logger
}

func NewService(apiKey, baseURL, model string, timeout time.Duration, log *logger.Logger) *Service {
	return &Service{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		log:        log,
	}
}

func (s *Service) IsAvailable() bool {
	return s.apiKey != ""
}

const analysisPrompt = `Analyze the provided PDF for a study session. Suggest 10 key topics or concepts that a student should focus on to best understand the material. Also, generate a 10-question multiple-choice quiz based on these core concepts. Return a single, clean JSON object with the following structure:
{ "topics": ["<Topic 1>", ...], "quiz": [{ "question": "<Question>", "options": ["<A>", "<B>", "<C>", "<D>"], "answer": "<Correct>" }, ...] }
Ensure the 'answer' value is present in its 'options' array. Do not include any text, explanations, or markdown formatting outside of this JSON object.`

// Request/response shapes of the generateContent API

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// AnalyzePDF produces study material for the document. On any failure
// (service unconfigured, quota, safety block, timeout, malformed
// output) it logs and returns the fallback payload instead.
func (s *Service) AnalyzePDF(ctx context.Context, data []byte, mimeType string) *Analysis {
	if !s.IsAvailable() {
		s.log.Warn("material generation not configured, using fallback")
		return Fallback()
	}

	analysis, err := s.generate(ctx, data, mimeType)
	if err != nil {
		s.log.Error("material generation failed, using fallback", "error", err)
		return Fallback()
	}

	return analysis
}

func (s *Service) generate(ctx context.Context, data []byte, mimeType string) (*Analysis, error) {
	reqBody := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: analysisPrompt},
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(data),
				}},
			},
		}},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}
	if genResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", genResp.Error.Message)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("API returned no candidates")
	}

	return parseAnalysis(genResp.Candidates[0].Content.Parts[0].Text)
}

// parseAnalysis extracts the topics/quiz object from model output.
// Models occasionally wrap the JSON in a markdown fence despite the
// prompt, so a fenced block is recovered before giving up.
func parseAnalysis(text string) (*Analysis, error) {
	raw := struct {
		Topics []string          `json:"topics"`
		Quiz   []battle.Question `json:"quiz"`
	}{}

	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		fenced, ok := extractFencedJSON(text)
		if !ok {
			return nil, fmt.Errorf("invalid or malformed JSON response: %w", err)
		}
		if err := json.Unmarshal([]byte(fenced), &raw); err != nil {
			return nil, fmt.Errorf("invalid fenced JSON response: %w", err)
		}
	}

	if raw.Topics == nil || raw.Quiz == nil {
		return nil, fmt.Errorf("response is missing required topics or quiz arrays")
	}

	topics := raw.Topics
	if len(topics) > MaxTopics {
		topics = topics[:MaxTopics]
	}

	quiz := battle.SanitizeQuiz(raw.Quiz)
	if len(quiz) == 0 {
		return nil, fmt.Errorf("no usable quiz questions in response")
	}

	return &Analysis{
		Topics:        topics,
		Quiz:          quiz,
		StudyDuration: DefaultStudyDuration,
	}, nil
}

func extractFencedJSON(text string) (string, bool) {
	start := strings.Index(text, "```json")
	if start == -1 {
		start = strings.Index(text, "```")
		if start == -1 {
			return "", false
		}
		start += len("```")
	} else {
		start += len("```json")
	}

	rest := text[start:]
	end := strings.Index(rest, "```")
	if end == -1 {
		return "", false
	}

	return strings.TrimSpace(rest[:end]), true
}

// Fallback is the fixed-shape substitute used whenever generation
// fails. Same shape as a real analysis so rooms never care.
func Fallback() *Analysis {
	topics := make([]string, MaxTopics)
	quiz := make([]battle.Question, battle.MaxQuizQuestions)

	for i := range topics {
		topics[i] = fmt.Sprintf("Analysis Failed: Topic %d", i+1)
	}
	for i := range quiz {
		quiz[i] = battle.Question{
			Question: fmt.Sprintf("This is fallback question #%d.", i+1),
			Options:  []string{"A", "B", "C", "D"},
			Answer:   "A",
		}
	}

	return &Analysis{
		Topics:        topics,
		Quiz:          quiz,
		StudyDuration: DefaultStudyDuration,
		IsFallback:    true,
	}
}
