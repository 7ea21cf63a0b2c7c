// Package llm calls the chat-completions API that produces maintenance task
// plans. The service layer only sees the Client through a narrow interface,
// so tests swap it out entirely.
package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/custodian-app/upkeep/internal/config"
	"github.com/custodian-app/upkeep/internal/pkg/fingerprint"
	"go.uber.org/zap"
)

const systemPrompt = "Return ONLY valid JSON for a list of tasks. " +
	"Each task has keys: name, description, priority(one of 1|2|3), " +
	"frequency, difficulty(one of easy|medium|hard|very hard), " +
	"duration, who(one of owner|professional), steps(array), tools(array)."

// TaskDraft is one generated maintenance task before persistence.
type TaskDraft struct {
	Name        string
	Description string
	Priority    int
	Frequency   string
	Difficulty  string
	Duration    string
	Who         string
	Steps       []string
	Tools       []string
}

// Client is the HTTP client for the task-plan model endpoint.
type Client struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewClient(cfg *config.Config, log *zap.Logger) *Client {
	timeout := time.Duration(cfg.OpenAI.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		BaseURL:    strings.TrimRight(cfg.OpenAI.BaseURL, "/"),
		APIKey:     cfg.OpenAI.APIKey,
		Model:      cfg.OpenAI.Model,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate asks the model for a task plan for one asset. Without an API key
// it returns a canned single-task plan, which keeps local development and CI
// off the network.
func (c *Client) Generate(ctx context.Context, prompt string, snap fingerprint.AssetSnapshot) ([]TaskDraft, error) {
	if c.APIKey == "" {
		return mockPlan(snap), nil
	}

	assetJSON, err := sonic.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal asset snapshot: %w", err)
	}
	if prompt == "" {
		prompt = "Create a maintenance plan for this asset."
	}
	user := fmt.Sprintf("Given this asset and prompt, produce a task list.\nASSET:\n%s\n\nPROMPT:\n%s\n", assetJSON, prompt)

	req := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
		Temperature: 0.2,
	}
	req.ResponseFormat.Type = "json_object"

	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	start := time.Now()
	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.Logger.Error("task plan request failed",
			zap.Int("status_code", resp.StatusCode),
			zap.Duration("latency", time.Since(start)),
			zap.String("body", string(respBody)))
		return nil, fmt.Errorf("upstream model error: status %d", resp.StatusCode)
	}

	var cr chatResponse
	if err := sonic.Unmarshal(respBody, &cr); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	drafts, err := parsePlan(cr.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	c.Logger.Sugar().Infow("task plan generated",
		"asset_id", snap.ID,
		"tasks", len(drafts),
		"latency", time.Since(start).String(),
	)
	return drafts, nil
}

// rawTask tolerates the model's loose typing: priority may arrive as a
// number or a string.
type rawTask struct {
	Name        string   `json:"name"`
	TaskName    string   `json:"taskName"`
	Description string   `json:"description"`
	Priority    any      `json:"priority"`
	Frequency   string   `json:"frequency"`
	Difficulty  string   `json:"difficulty"`
	Duration    string   `json:"duration"`
	Who         string   `json:"who"`
	Steps       []string `json:"steps"`
	Tools       []string `json:"tools"`
}

func parsePlan(content string) ([]TaskDraft, error) {
	var raw []rawTask

	// Accept either a bare array or an object wrapping it under "tasks".
	if err := sonic.UnmarshalString(content, &raw); err != nil {
		var wrapped struct {
			Tasks []rawTask `json:"tasks"`
		}
		if err := sonic.UnmarshalString(content, &wrapped); err != nil {
			return nil, fmt.Errorf("model output is not a task plan: %w", err)
		}
		raw = wrapped.Tasks
	}

	drafts := make([]TaskDraft, 0, len(raw))
	for _, t := range raw {
		drafts = append(drafts, normalizeTask(t))
	}
	return drafts, nil
}

func normalizeTask(t rawTask) TaskDraft {
	name := t.Name
	if name == "" {
		name = t.TaskName
	}
	if name == "" {
		name = "Untitled Task"
	}
	return TaskDraft{
		Name:        name,
		Description: t.Description,
		Priority:    coercePriority(t.Priority),
		Frequency:   t.Frequency,
		Difficulty:  oneOf(t.Difficulty, []string{"easy", "medium", "hard", "very hard"}, "medium"),
		Duration:    t.Duration,
		Who:         oneOf(t.Who, []string{"owner", "professional"}, "owner"),
		Steps:       t.Steps,
		Tools:       t.Tools,
	}
}

func coercePriority(v any) int {
	switch p := v.(type) {
	case float64:
		if n := int(p); n >= 1 && n <= 3 {
			return n
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(p)); err == nil && n >= 1 && n <= 3 {
			return n
		}
	}
	return 2
}

func oneOf(value string, allowed []string, fallback string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return fallback
}

func mockPlan(snap fingerprint.AssetSnapshot) []TaskDraft {
	name := snap.Name
	if name == "" {
		name = "asset"
	}
	return []TaskDraft{{
		Name:        "Inspect " + name,
		Description: "General inspection to ensure good condition.",
		Priority:    2,
		Frequency:   "annually",
		Difficulty:  "easy",
		Duration:    "30-60 min",
		Who:         "owner",
		Steps:       []string{"Visual check", "Tighten loose parts", "Record findings"},
		Tools:       []string{"Screwdriver", "Cleaning cloth"},
	}}
}
