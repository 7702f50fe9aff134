package service

import (
	"bytes"
	"context"
	"dating_scan_backend/internal/config"
	"dating_scan_backend/internal/scoring"
	"dating_scan_backend/internal/util"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// NarratorService turns a scored result into prose through an
// OpenAI-compatible chat completion endpoint.
type NarratorService struct {
	config config.AIConfig
	client *http.Client
}

func NewNarratorService(cfg config.AIConfig) *NarratorService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &NarratorService{config: cfg, client: &http.Client{Timeout: timeout}}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *NarratorService) Enabled() bool {
	return s != nil && s.config.BaseURL != ""
}

const narratorSystemPrompt = "You write short, warm, non-clinical summaries of relationship-style questionnaire results. " +
	"Use only the numbers you are given. Mention validity warnings gently when present. " +
	"Never diagnose and never give medical or legal advice."

// BuildPrompt renders the user message sent to the model.
func BuildPrompt(title string, res *scoring.Result) (string, error) {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Assessment: %s\n", title)
	if res.Classification != nil {
		fmt.Fprintf(&b, "Primary style: %s\n", res.Classification.Primary)
		if len(res.Classification.Secondary) > 0 {
			secondary := make([]string, 0, len(res.Classification.Secondary))
			for _, d := range res.Classification.Secondary {
				secondary = append(secondary, string(d))
			}
			fmt.Fprintf(&b, "Secondary styles: %s\n", strings.Join(secondary, ", "))
		}
	}
	fmt.Fprintf(&b, "Blind spot index: %.0f\n\nFull result:\n%s\n", res.Blindspots.Index, data)
	b.WriteString("\nWrite three paragraphs: the overall style, the strongest blind spot, and one practical suggestion.")
	return b.String(), nil
}

func (s *NarratorService) Narrate(ctx context.Context, title string, res *scoring.Result) (string, error) {
	if !s.Enabled() {
		return "", util.ErrNarratorDisabled
	}
	prompt, err := BuildPrompt(title, res)
	if err != nil {
		return "", err
	}

	reqBody := ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []AIChatMessage{
			{Role: "system", Content: narratorSystemPrompt},
			{Role: "user", Content: prompt},
		},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(s.config.BaseURL, "/")+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) > 0 {
		return strings.TrimSpace(result.Choices[0].Message.Content), nil
	}
	return "", fmt.Errorf("AI returned no choices")
}
