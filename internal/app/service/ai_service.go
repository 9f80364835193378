package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lexcase/lexcase-backend/config"
	"github.com/lexcase/lexcase-backend/internal/app/model"
)

// AIService AI 요약 서비스 인터페이스
type AIService interface {
	SummarizeCase(ctx context.Context, c *model.Case, documents []model.DocumentRecord) (string, error)
}

type aiService struct {
	config *config.Config
	client *http.Client
}

// NewAIService AI 서비스 생성자
func NewAIService(cfg *config.Config) AIService {
	return &aiService{
		config: cfg,
		client: &http.Client{},
	}
}

// OpenAI API 요청 구조체
type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// SummarizeCase produces a short narrative summary of a case and its
// attachments for the case detail view
func (s *aiService) SummarizeCase(ctx context.Context, c *model.Case, documents []model.DocumentRecord) (string, error) {
	if s.config.OpenAI.APIKey == "" {
		return "", fmt.Errorf("OpenAI API key is not configured")
	}

	prompt := s.buildPrompt(c, documents)

	content, err := s.callOpenAI(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to call OpenAI API: %v", err)
	}

	return content, nil
}

func (s *aiService) buildPrompt(c *model.Case, documents []model.DocumentRecord) string {
	var prompt strings.Builder

	prompt.WriteString("You are a paralegal assistant. Summarize the following case file for a lawyer preparing for review.\n\n")
	prompt.WriteString(fmt.Sprintf("Case number: %s\n", c.CaseNumber))
	prompt.WriteString(fmt.Sprintf("Title: %s\n", c.Title))
	if c.Description != "" {
		prompt.WriteString(fmt.Sprintf("Description: %s\n", c.Description))
	}
	if len(c.Parties) > 0 {
		prompt.WriteString(fmt.Sprintf("Parties: %s\n", strings.Join(c.Parties, ", ")))
	}
	prompt.WriteString(fmt.Sprintf("Status: %s\n", c.Status))

	if len(documents) > 0 {
		prompt.WriteString("\nAttached documents:\n")
		for _, doc := range documents {
			prompt.WriteString(fmt.Sprintf("- %s (%s, %d bytes, uploaded %s)\n",
				doc.FileName, doc.ContentType, doc.Size, doc.UploadedAt.Format("2006-01-02")))
		}
	}

	prompt.WriteString("\nWrite 2-3 short paragraphs. State only what the file shows; never invent facts, dates or parties.\n")
	prompt.WriteString("Output the summary text only, with no headings or preamble.")

	return prompt.String()
}

// callOpenAI OpenAI API 호출
func (s *aiService) callOpenAI(ctx context.Context, prompt string) (string, error) {
	reqData := openAIRequest{
		Model: s.config.OpenAI.Model,
		Messages: []openAIMessage{
			{
				Role:    "user",
				Content: prompt,
			},
		},
	}

	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %v", err)
	}

	url := strings.TrimRight(s.config.OpenAI.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.config.OpenAI.APIKey))

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %v", err)
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(body, &openAIResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %v", err)
	}

	if openAIResp.Error != nil {
		return "", fmt.Errorf("OpenAI API error: %s", openAIResp.Error.Message)
	}

	if len(openAIResp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return strings.TrimSpace(openAIResp.Choices[0].Message.Content), nil
}
