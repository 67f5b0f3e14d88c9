package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/BaSui01/retailflow/types"
)

// Config configures the OpenAI-backed oracle.
type Config struct {
	APIKey      string        `json:"api_key" yaml:"api_key"`
	Model       string        `json:"model" yaml:"model"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
	Temperature float32       `json:"temperature" yaml:"temperature"`
}

// DefaultConfig returns reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Model:       openai.GPT4oMini,
		Timeout:     30 * time.Second,
		Temperature: 0.7,
	}
}

// OpenAIOracle generates debate content through the OpenAI chat API.
type OpenAIOracle struct {
	client *openai.Client
	config Config
	logger *zap.Logger
}

// NewOpenAI creates an OpenAI-backed oracle.
func NewOpenAI(config Config, logger *zap.Logger) *OpenAIOracle {
	if config.Model == "" {
		config.Model = DefaultConfig().Model
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIOracle{
		client: openai.NewClient(config.APIKey),
		config: config,
		logger: logger.With(zap.String("component", "oracle")),
	}
}

// GeneratePosition asks the model for an opening position and parses the
// structured-text response.
func (o *OpenAIOracle) GeneratePosition(ctx context.Context, req PositionRequest) (Position, error) {
	prompt := positionPrompt(req)
	text, err := o.complete(ctx, prompt)
	if err != nil {
		return Position{}, types.NewError(types.ErrOracleFailed, "position generation failed").
			WithRole(req.Role).WithRetryable(true).WithCause(err)
	}

	pos := ParsePosition(text)
	pos.Role = req.Role
	o.logger.Debug("position generated",
		zap.String("role", string(req.Role)),
		zap.String("stance", string(pos.Stance)),
		zap.Float64("confidence", pos.Confidence))
	return pos, nil
}

// GenerateRebuttal asks the model for a short response to a target position.
func (o *OpenAIOracle) GenerateRebuttal(ctx context.Context, req RebuttalRequest) (Rebuttal, error) {
	prompt := rebuttalPrompt(req)
	text, err := o.complete(ctx, prompt)
	if err != nil {
		return Rebuttal{}, types.NewError(types.ErrOracleFailed, "rebuttal generation failed").
			WithRole(req.From.Role).WithRetryable(true).WithCause(err)
	}
	return Rebuttal{
		From:   req.From.Role,
		Target: req.Target.Role,
		Text:   strings.TrimSpace(text),
	}, nil
}

// GenerateCompromise asks the model to draft middle ground between positions.
func (o *OpenAIOracle) GenerateCompromise(ctx context.Context, req CompromiseRequest) (string, error) {
	prompt := compromisePrompt(req)
	text, err := o.complete(ctx, prompt)
	if err != nil {
		return "", types.NewError(types.ErrOracleFailed, "compromise generation failed").
			WithRetryable(true).WithCause(err)
	}
	return strings.TrimSpace(text), nil
}

func (o *OpenAIOracle) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.config.Model,
		Temperature: o.config.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a retail specialist in a store coordination debate. Answer in the exact format requested.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func positionPrompt(req PositionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "DEBATE TOPIC: %s\n", req.Topic)
	fmt.Fprintf(&b, "YOU ARE: %s (%s)\n\n", req.Role.Persona(), req.Role)
	writeStatusContext(&b, req.Status)
	if len(req.Triggering) > 0 {
		b.WriteString("\nDECISIONS UNDER DISPUTE:\n")
		for _, d := range req.Triggering {
			fmt.Fprintf(&b, "- %s proposes %s (priority %d): %s\n", d.Role, d.Type, d.Priority, d.Reasoning)
		}
	}
	b.WriteString(`
Respond in exactly this format:
STANCE: [strongly_agree|agree|neutral|disagree|strongly_disagree]
POSITION: [one sentence position, include concrete prices or quantities]
ARGUMENTS:
- [argument 1]
- [argument 2]
CONFIDENCE: [0.0-1.0]
REASONING: [short reasoning in your professional voice]`)
	return b.String()
}

func rebuttalPrompt(req RebuttalRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "DEBATE TOPIC: %s\n", req.Topic)
	fmt.Fprintf(&b, "YOU ARE: %s (%s), stance %s\n", req.From.Role.Persona(), req.From.Role, req.From.Stance)
	fmt.Fprintf(&b, "YOUR POSITION: %s\n\n", req.From.Statement)
	fmt.Fprintf(&b, "OPPONENT: %s (%s), stance %s\n", req.Target.Role.Persona(), req.Target.Role, req.Target.Stance)
	fmt.Fprintf(&b, "OPPONENT POSITION: %s\n", req.Target.Statement)
	b.WriteString("\nWrite a two-sentence rebuttal of the opponent position in your professional voice.")
	return b.String()
}

func compromisePrompt(req CompromiseRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "DEBATE TOPIC: %s\n\n", req.Topic)
	writeStatusContext(&b, req.Status)
	b.WriteString("\nPOSITIONS:\n")
	for _, p := range req.Positions {
		fmt.Fprintf(&b, "- %s (%s): %s\n", p.Role.Persona(), p.Stance, p.Statement)
	}
	b.WriteString("\nPropose a single compromise that blends these positions. One sentence, include concrete prices or quantities.")
	return b.String()
}

func writeStatusContext(b *strings.Builder, status types.StoreStatus) {
	fmt.Fprintf(b, "STORE DAY %d, CASH $%.2f\n", status.Day, status.Cash)
	if len(status.Inventory) > 0 {
		b.WriteString("INVENTORY:")
		for _, product := range status.StockoutProducts() {
			fmt.Fprintf(b, " %s=OUT", product)
		}
		for product, qty := range status.Inventory {
			if qty > 0 {
				fmt.Fprintf(b, " %s=%d", product, qty)
			}
		}
		b.WriteString("\n")
	}
}
