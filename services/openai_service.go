package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/aivanb/LifestyleApp/config"
	"github.com/aivanb/LifestyleApp/models"
)

// PromptResult is the tagged outcome of one text-completion call. The
// gateway never returns a Go error; callers branch on Success.
type PromptResult struct {
	Success      bool    `json:"success"`
	Response     string  `json:"response,omitempty"`
	Error        string  `json:"error,omitempty"`
	TokensUsed   int     `json:"tokens_used"`
	Cost         float64 `json:"cost"`
	ResponseTime float64 `json:"response_time"`
}

// PromptSender is the boundary the parsing pipeline talks to.
type PromptSender interface {
	SendPrompt(userID uint, prompt string) PromptResult
}

type OpenAIService struct {
	apiKey string
	model  string
	apiURL string
	client *http.Client
}

// NewOpenAIService reads credentials from the environment. A missing key
// is not an error here; SendPrompt reports it per call.
func NewOpenAIService() *OpenAIService {
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	apiURL := os.Getenv("OPENAI_API_URL")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1/chat/completions"
	}
	return &OpenAIService{
		apiKey: os.Getenv("OPENAI_API_KEY"),
		model:  model,
		apiURL: apiURL,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SendPrompt runs a single chat completion. One attempt, no retry. Every
// call leaves an APIUsageLog row keyed by the requesting user.
func (s *OpenAIService) SendPrompt(userID uint, prompt string) PromptResult {
	start := time.Now()

	if s.apiKey == "" {
		res := PromptResult{
			Success:      false,
			Error:        "OPENAI_API_KEY is not configured",
			ResponseTime: time.Since(start).Seconds(),
		}
		s.logUsage(userID, res)
		return res
	}

	payload := chatCompletionRequest{
		Model:     s.model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: 1000,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return s.fail(userID, start, fmt.Sprintf("failed to marshal request: %v", err))
	}

	req, err := http.NewRequest(http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return s.fail(userID, start, fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return s.fail(userID, start, fmt.Sprintf("completion request failed: %v", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return s.fail(userID, start, fmt.Sprintf("failed to read response: %v", err))
	}

	var cr chatCompletionResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return s.fail(userID, start, fmt.Sprintf("failed to decode response: %v", err))
	}
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("completion API error %d", resp.StatusCode)
		if cr.Error != nil {
			msg = fmt.Sprintf("completion API error %d: %s", resp.StatusCode, cr.Error.Message)
		}
		return s.fail(userID, start, msg)
	}
	if len(cr.Choices) == 0 {
		return s.fail(userID, start, "completion returned no choices")
	}

	res := PromptResult{
		Success:      true,
		Response:     cr.Choices[0].Message.Content,
		TokensUsed:   cr.Usage.TotalTokens,
		Cost:         calculateCost(cr.Usage.TotalTokens),
		ResponseTime: time.Since(start).Seconds(),
	}
	s.logUsage(userID, res)
	return res
}

func (s *OpenAIService) fail(userID uint, start time.Time, msg string) PromptResult {
	config.GetLogger().WithField("error", msg).Error("openai request failed")
	res := PromptResult{
		Success:      false,
		Error:        msg,
		ResponseTime: time.Since(start).Seconds(),
	}
	s.logUsage(userID, res)
	return res
}

// Rough gpt-4o-mini blended rate per 1K tokens.
func calculateCost(tokens int) float64 {
	return float64(tokens) / 1000.0 * 0.002
}

func (s *OpenAIService) logUsage(userID uint, res PromptResult) {
	if config.DB == nil {
		return
	}
	entry := models.APIUsageLog{
		UserID:       userID,
		RequestType:  "chat_completion",
		ModelUsed:    s.model,
		TokensUsed:   res.TokensUsed,
		Cost:         res.Cost,
		ResponseTime: res.ResponseTime,
		Success:      res.Success,
		ErrorMessage: res.Error,
	}
	if err := config.DB.Create(&entry).Error; err != nil {
		config.GetLogger().WithField("error", err.Error()).Warn("failed to record API usage")
	}
}

// UsageStats aggregates a user's completion usage.
type UsageStats struct {
	TotalTokens        int     `json:"total_tokens"`
	TotalCost          float64 `json:"total_cost"`
	TotalRequests      int64   `json:"total_requests"`
	SuccessfulRequests int64   `json:"successful_requests"`
	SuccessRate        float64 `json:"success_rate"`
}

func GetUsageStats(userID uint) (*UsageStats, error) {
	var logs []models.APIUsageLog
	if err := config.DB.Where("user_id = ?", userID).Find(&logs).Error; err != nil {
		return nil, err
	}

	stats := &UsageStats{}
	for _, l := range logs {
		stats.TotalTokens += l.TokensUsed
		stats.TotalCost += l.Cost
		stats.TotalRequests++
		if l.Success {
			stats.SuccessfulRequests++
		}
	}
	if stats.TotalRequests > 0 {
		stats.SuccessRate = float64(stats.SuccessfulRequests) / float64(stats.TotalRequests) * 100
	}
	return stats, nil
}
