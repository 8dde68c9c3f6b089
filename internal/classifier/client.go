// Package classifier is the AI-assisted intent path: when the rule
// cascade yields no match, a chat-completions style model may still name
// an intent tag. Classification is advisory — any failure degrades to
// plain-text display, never to an error the user sees.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"portfolio-assistant-go/internal/config"
	"portfolio-assistant-go/internal/intent"
)

const systemPrompt = `You classify a portfolio assistant's reply into exactly one intent tag.
Answer with only the tag, or "none" when no analytical card applies.`

// ClassifierInterface defines the interface for the intent classifier.
type ClassifierInterface interface {
	Classify(ctx context.Context, reply string) (intent.Tag, error)
}

// Client is a rate-limited REST client for the classification endpoint.
// It implements ClassifierInterface.
type Client struct {
	client  *resty.Client
	apiKey  string
	model   string
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure Client implements the interface
var _ ClassifierInterface = (*Client)(nil)

// NewClient creates a new classifier client.
func NewClient(cfg *config.Classifier, logger *zap.Logger) *Client {
	client := resty.New().SetBaseURL(cfg.BaseURL)
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		apiKey:  cfg.ApiKey,
		model:   cfg.Model,
		logger:  logger,
		limiter: limiter,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Classify asks the model for an intent tag. An unknown or "none" answer
// is reported as an error so the caller falls back to plain text.
func (c *Client) Classify(ctx context.Context, reply string) (intent.Tag, error) {
	user, _ := json.Marshal(map[string]string{"reply": reply, "tags": tagList()})

	req := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: string(user)},
			},
			Temperature: 0,
			MaxTokens:   16,
		}).
		SetResult(&chatResponse{})

	resp, err := c.doRequest(ctx, "POST", "/v1/chat/completions", req)
	if err != nil {
		return "", fmt.Errorf("failed to classify reply: %w", err)
	}

	result := resp.Result().(*chatResponse)
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("classifier returned no choices")
	}

	answer := strings.TrimSpace(result.Choices[0].Message.Content)
	tag, ok := knownTags[intent.Tag(answer)]
	if !ok {
		return "", fmt.Errorf("classifier returned unknown tag %q", answer)
	}
	c.logger.Debug("classifier answer", zap.String("tag", answer))
	return tag, nil
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Classifier request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

var allTags = []intent.Tag{
	intent.TagAccountBalance, intent.TagFees, intent.TagExpiringOptions,
	intent.TagStockAndOptionTrades, intent.TagOptionTrades,
	intent.TagLastOptionTrade, intent.TagStrikeExtreme,
	intent.TagTotalPremium, intent.TagAdvancedOptionQuery,
	intent.TagTimeWindowTrades, intent.TagAveragePrice,
	intent.TagPriceExtremes, intent.TagProfitableTrades,
	intent.TagDetailedTrades, intent.TagTradeSummary,
}

var knownTags = func() map[intent.Tag]intent.Tag {
	m := make(map[intent.Tag]intent.Tag, len(allTags))
	for _, t := range allTags {
		m[t] = t
	}
	return m
}()

func tagList() string {
	tags := make([]string, 0, len(allTags))
	for _, t := range allTags {
		tags = append(tags, string(t))
	}
	return strings.Join(tags, ", ")
}
