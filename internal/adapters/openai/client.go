package openai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/rs/zerolog"

	"github.com/ubiquity-os/dao-analytics/internal/config"
	"github.com/ubiquity-os/dao-analytics/internal/repo"
)

type Client struct {
	key   string
	model string
	cli   openai.Client
	log   zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
	model := cfg.OpenAIModel
	if strings.TrimSpace(model) == "" { model = "gpt-4.1-mini" }
	cli := openai.NewClient(option.WithAPIKey(cfg.OpenAIKey))
	return &Client{key: cfg.OpenAIKey, model: model, cli: cli, log: log}
}

// SummarizeRun turns a finished run's counters into a short human digest
// suitable for a chat notification.
func (c *Client) SummarizeRun(ctx context.Context, run *repo.RunInfo) (string, error) {
	if strings.TrimSpace(c.key) == "" { return "", errors.New("openai: missing key") }
	c.log.Info().Str("model", c.model).Msg("openai SummarizeRun call")
	userContent := ""
	if b, err := json.Marshal(run); err == nil { userContent = string(b) }
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are an engineering-productivity analyst. Given the JSON stats of a finished repository analytics run, produce a short plain-text digest: what was analyzed, how many pull requests lacked a tracked issue, and anything unusual. No markdown."),
			openai.UserMessage(userContent),
		},
	}
	resp, err := c.cli.Chat.Completions.New(ctx, params)
	if err != nil { return "", err }
	if len(resp.Choices) == 0 { return "", errors.New("openai: no choices") }
	return resp.Choices[0].Message.Content, nil
}
