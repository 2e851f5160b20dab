package ai

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/storybookapp/storybook-server/internal/config"
	"github.com/storybookapp/storybook-server/internal/domain"
	"github.com/storybookapp/storybook-server/internal/format"
	"github.com/storybookapp/storybook-server/internal/id"
	"github.com/storybookapp/storybook-server/internal/ratelimit"
)

const (
	defaultTimeout    = 120 * time.Second
	defaultMaxRetries = 3
	minChapters       = 5
)

// storyToolName is the function the model is forced to call so story output
// arrives as structured JSON instead of free text.
const storyToolName = "generate_story"

var storySchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"title": {
			Type:        jsonschema.String,
			Description: "The title of the story",
		},
		"chapters": {
			Type:        jsonschema.Array,
			Description: "An array of chapters",
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"title":   {Type: jsonschema.String, Description: "The chapter title"},
					"content": {Type: jsonschema.String, Description: "The full chapter content"},
				},
				Required: []string{"title", "content"},
			},
		},
	},
	Required: []string{"title", "chapters"},
}

// Client talks to an OpenAI-compatible backend (OpenRouter by default).
// Outbound calls are rate limited per model so text and image quotas do not
// starve each other.
type Client struct {
	client     *openai.Client
	model      string
	imageModel string
	limiter    *ratelimit.KeyedRateLimiter
	logger     *slog.Logger
	timeout    time.Duration
	maxRetries int
}

// NewClient creates a generation client from config. The caller is expected
// to have checked cfg.DemoMode() already; an empty key is still an error here.
func NewClient(cfg config.AIConfig, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("generation backend API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	} else {
		clientCfg.BaseURL = config.DefaultBaseURL
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 20
	}

	return &Client{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
		limiter:    ratelimit.PerMinute(rpm),
		logger:     logger,
		timeout:    defaultTimeout,
		maxRetries: defaultMaxRetries,
	}, nil
}

// GenerateStory asks the text model for a complete story via forced function
// calling and converts the structured result into the editing model. Chapter
// prose comes back as plain text and is converted to paragraph HTML.
func (c *Client) GenerateStory(ctx context.Context, prompt string, genre domain.Genre, audience domain.Audience) (*domain.Story, error) {
	fullPrompt := fmt.Sprintf(`You are a world-class author. Write a complete story based on the following prompt.
The story should be engaging and well-structured with multiple chapters.

Prompt: %q
Genre: %s
Target Audience: %s

Generate a title and at least %d chapters. Each chapter should have a title and substantial content.`,
		prompt, genre, audience, minChapters)

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: fullPrompt}},
		Tools: []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        storyToolName,
				Description: "Generate a complete story with title and chapters",
				Parameters:  storySchema,
			},
		}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: storyToolName},
		},
	}

	resp, err := c.complete(ctx, c.model, req)
	if err != nil {
		return nil, fmt.Errorf("generate story: %w", err)
	}

	args := toolArguments(resp, storyToolName)
	if args == "" {
		return nil, errors.New("generate story: no structured story in response")
	}

	var parsed struct {
		Title    string `json:"title"`
		Chapters []struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		} `json:"chapters"`
	}
	if err := json.Unmarshal([]byte(args), &parsed); err != nil {
		return nil, fmt.Errorf("generate story: malformed story payload: %w", err)
	}
	if parsed.Title == "" || len(parsed.Chapters) == 0 {
		return nil, errors.New("generate story: story payload missing title or chapters")
	}

	story := &domain.Story{
		Title:    parsed.Title,
		Genre:    genre,
		Audience: audience,
		Chapters: make([]domain.Chapter, len(parsed.Chapters)),
	}
	for i, ch := range parsed.Chapters {
		story.Chapters[i] = domain.Chapter{
			ID:      id.MustGenerate(id.PrefixChapter),
			Title:   ch.Title,
			Content: format.TextToHTML(ch.Content),
		}
	}

	if c.logger != nil {
		c.logger.Info("story generated",
			"title", story.Title,
			"chapters", len(story.Chapters),
			"model", c.model,
		)
	}
	return story, nil
}

// GenerateChapterImage runs the two-step illustration flow: derive a one
// sentence scene description from the chapter text with the text model, then
// ask the image model to render it. The image arrives as a data URI in the
// message content.
func (c *Client) GenerateChapterImage(ctx context.Context, chapterContent, customPrompt string) (string, error) {
	describeReq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			Content: fmt.Sprintf(`Based on the following chapter text, create a short, visually descriptive prompt for an image generation AI. The prompt should be a single sentence describing a key scene, character, or setting. Focus on creating a beautiful, illustrative style suitable for a storybook.

Chapter Text: %q`, chapterContent),
		}},
		MaxTokens: 100,
	}

	describeResp, err := c.complete(ctx, c.model, describeReq)
	if err != nil {
		return "", fmt.Errorf("derive image prompt: %w", err)
	}
	scenePrompt := strings.TrimSpace(messageContent(describeResp))

	finalPrompt := illustrationStylePrefix + scenePrompt
	if customPrompt != "" {
		finalPrompt += ", " + customPrompt
	}

	imageReq := openai.ChatCompletionRequest{
		Model:    c.imageModel,
		Messages: []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: finalPrompt}},
	}

	imageResp, err := c.complete(ctx, c.imageModel, imageReq)
	if err != nil {
		return "", fmt.Errorf("generate image: %w", err)
	}

	content := strings.TrimSpace(messageContent(imageResp))
	if !strings.HasPrefix(content, "data:image/") {
		return "", errors.New("generate image: no image data received from provider")
	}

	if c.logger != nil {
		c.logger.Info("chapter illustration generated", "model", c.imageModel)
	}
	return content, nil
}

// EnhancePrompt expands a story idea into a more vivid paragraph. An empty
// model response falls back to the original prompt rather than erroring.
func (c *Client) EnhancePrompt(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			Content: fmt.Sprintf(`You are a creative assistant. Your task is to take a user's story idea and make it more vivid, imaginative, and detailed.
Expand on the original idea, adding interesting characters, settings, and plot twists, but keep the core concept intact.
The output should be a single paragraph.

Original idea: %q

Enhanced idea:`, prompt),
		}},
		MaxTokens: 200,
	}

	resp, err := c.complete(ctx, c.model, req)
	if err != nil {
		return "", fmt.Errorf("enhance prompt: %w", err)
	}

	enhanced := strings.TrimSpace(messageContent(resp))
	if enhanced == "" {
		return prompt, nil
	}
	return enhanced, nil
}

// CheckConnection performs a minimal completion to verify the key and
// endpoint.
func (c *Client) CheckConnection(ctx context.Context) error {
	req := openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "Hello"}},
		MaxTokens: 10,
	}
	if _, err := c.complete(ctx, c.model, req); err != nil {
		return fmt.Errorf("connection check: %w", err)
	}
	return nil
}

// complete sends one chat completion with rate limiting and retries. Retries
// back off linearly and stop as soon as the context is done.
func (c *Client) complete(ctx context.Context, limitKey string, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx, limitKey); err != nil {
			return openai.ChatCompletionResponse{}, err
		}

		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err == nil && len(resp.Choices) > 0 {
			return resp, nil
		}
		if err == nil {
			err = errors.New("empty response from provider")
		}
		lastErr = err

		if c.logger != nil {
			c.logger.Warn("generation call failed",
				"model", req.Model, "attempt", attempt, "error", err)
		}

		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return openai.ChatCompletionResponse{}, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}
	return openai.ChatCompletionResponse{}, fmt.Errorf("after %d attempts: %w", c.maxRetries, lastErr)
}

// messageContent returns the first choice's message content, if any.
func messageContent(resp openai.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content
}

// toolArguments extracts the JSON arguments of the named tool call from the
// first choice. Also accepts legacy function_call responses, which some
// OpenAI-compatible providers still send.
func toolArguments(resp openai.ChatCompletionResponse, name string) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	msg := resp.Choices[0].Message
	for _, call := range msg.ToolCalls {
		if call.Function.Name == name {
			return call.Function.Arguments
		}
	}
	if msg.FunctionCall != nil && msg.FunctionCall.Name == name {
		return msg.FunctionCall.Arguments
	}
	return ""
}
