package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"

	"github.com/postpilot/composer/internal/rules"
)

// Brief is the author's input to content generation.
type Brief struct {
	Topic     string
	Tone      string
	Language  string
	Platform  rules.Platform
	MediaURLs []string
}

// Generated is an opaque content suggestion. Callers merge it into the
// session through the ordinary setters, so edit-mode propagation applies
// exactly as for manual edits.
type Generated struct {
	Title    string   `json:"title"`
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

// Generator produces platform-shaped post content from a brief.
type Generator interface {
	Generate(ctx context.Context, brief Brief) (*Generated, error)
}

// Settings configures the OpenAI-backed generator.
type Settings struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIGenerator implements Generator with the official openai-go SDK
// (chat completions). The model is instructed to answer with a single JSON
// object so the reply parses without heuristics.
type OpenAIGenerator struct {
	Model string
	Opts  []option.RequestOption
}

func NewOpenAIGenerator(settings Settings) (*OpenAIGenerator, error) {
	if strings.TrimSpace(settings.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	if strings.TrimSpace(settings.Model) == "" {
		return nil, errors.New("ai model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(settings.APIKey)}
	if settings.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(settings.BaseURL))
	}
	return &OpenAIGenerator{Model: settings.Model, Opts: opts}, nil
}

const systemPrompt = "You write social media posts. Reply with one JSON object " +
	`{"title":"...","caption":"...","hashtags":["#..."]} and nothing else.`

func (g *OpenAIGenerator) Generate(ctx context.Context, brief Brief) (*Generated, error) {
	if err := validateBrief(brief); err != nil {
		return nil, err
	}

	client := openai.NewClient(g.Opts...)
	response, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt(brief)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, errors.New("generate content: empty choices")
	}
	return parseGenerated(response.Choices[0].Message.Content)
}

func validateBrief(brief Brief) error {
	if strings.TrimSpace(brief.Topic) == "" {
		return errors.New("brief topic is required")
	}
	if brief.Platform != "" {
		if _, err := rules.ParsePlatform(string(brief.Platform)); err != nil {
			return err
		}
	}
	return nil
}

func userPrompt(brief Brief) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", strings.TrimSpace(brief.Topic))
	if brief.Platform != "" {
		fmt.Fprintf(&b, "Platform: %s (caption limit %d characters)\n", brief.Platform, rules.CharacterLimit(brief.Platform))
	}
	if strings.TrimSpace(brief.Tone) != "" {
		fmt.Fprintf(&b, "Tone: %s\n", strings.TrimSpace(brief.Tone))
	}
	if strings.TrimSpace(brief.Language) != "" {
		fmt.Fprintf(&b, "Language: %s\n", strings.TrimSpace(brief.Language))
	}
	if len(brief.MediaURLs) > 0 {
		fmt.Fprintf(&b, "Attached media: %s\n", strings.Join(brief.MediaURLs, ", "))
	}
	return b.String()
}

func parseGenerated(reply string) (*Generated, error) {
	trimmed := strings.TrimSpace(reply)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	body := gjson.Parse(trimmed)
	if !body.IsObject() {
		return nil, fmt.Errorf("model reply is not a JSON object: %q", reply)
	}

	generated := &Generated{
		Title:   strings.TrimSpace(body.Get("title").String()),
		Caption: strings.TrimSpace(body.Get("caption").String()),
	}
	for _, tag := range body.Get("hashtags").Array() {
		value := strings.TrimSpace(tag.String())
		if value == "" {
			continue
		}
		if !strings.HasPrefix(value, "#") {
			value = "#" + value
		}
		generated.Hashtags = append(generated.Hashtags, value)
	}

	if generated.Caption == "" {
		return nil, errors.New("model reply did not include a caption")
	}
	return generated, nil
}
