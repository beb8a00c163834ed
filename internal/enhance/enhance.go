package enhance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
)

// Kind classifies an enhancement failure
type Kind int

const (
	// KindNetwork covers transport failures and timeouts
	KindNetwork Kind = iota
	// KindAuth covers credential and permission failures
	KindAuth
	// KindMalformed covers responses missing the generated text
	KindMalformed
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is the failure type for enhancement calls. Callers treat any
// *Error as non-fatal and fall back to plain transcript insertion.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("enhancement failed (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config holds enhancement client configuration
type Config struct {
	Region  string
	ModelID string
	Timeout time.Duration
}

const (
	defaultRegion  = "us-east-1"
	defaultModelID = "anthropic.claude-3-haiku-20240307-v1:0"
	defaultTimeout = 30 * time.Second
)

// ConfigFromEnv builds a Config from the environment:
// AWS_REGION (default us-east-1) and BEDROCK_MODEL_ID (default Claude 3 Haiku).
func ConfigFromEnv() Config {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = defaultRegion
	}

	modelID := os.Getenv("BEDROCK_MODEL_ID")
	if modelID == "" {
		modelID = defaultModelID
	}

	return Config{
		Region:  region,
		ModelID: modelID,
		Timeout: defaultTimeout,
	}
}

// invoker is the subset of the Bedrock runtime client used by Client
type invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Client rewrites selected text according to a voice instruction using
// an Anthropic Claude model hosted on AWS Bedrock.
type Client struct {
	client  invoker
	modelID string
	timeout time.Duration
}

// New creates a new enhancement client. Credential or region problems at
// construction time leave the client unavailable rather than failing the
// application; IsAvailable reports the degraded state.
func New(ctx context.Context, config Config) *Client {
	c := &Client{
		modelID: config.ModelID,
		timeout: config.Timeout,
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.Region))
	if err != nil {
		return c
	}

	c.client = bedrockruntime.NewFromConfig(awsCfg)
	return c
}

// IsAvailable reports whether the Bedrock client was initialized and
// enhancement requests can be attempted.
func (c *Client) IsAvailable() bool {
	return c != nil && c.client != nil
}

// anthropicRequest is the Bedrock invoke body for Anthropic Claude models
type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// buildPrompt embeds the selected text and the voice instruction verbatim
func buildPrompt(instruction, selectedText string) string {
	return fmt.Sprintf(`You are helping a user edit text based on voice commands. The user has selected some text and given a voice instruction for how to modify it.

Selected text: "%s"
Voice instruction: "%s"

Please modify the selected text according to the voice instruction. Return only the modified text without any explanation or additional formatting.`, selectedText, instruction)
}

// Enhance sends the voice instruction and selected text to the model and
// returns the rewritten text. The call is bounded by the configured
// timeout; expiry, transport, auth, and malformed-response conditions all
// surface as *Error.
func (c *Client) Enhance(ctx context.Context, instruction, selectedText string) (string, error) {
	if !c.IsAvailable() {
		return "", &Error{Kind: KindAuth, Err: errors.New("bedrock client not initialized")}
	}

	body, err := json.Marshal(anthropicRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        1000,
		Messages: []anthropicMessage{
			{Role: "user", Content: buildPrompt(instruction, selectedText)},
		},
	})
	if err != nil {
		return "", &Error{Kind: KindMalformed, Err: fmt.Errorf("marshal request: %w", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	output, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", &Error{Kind: classify(err), Err: err}
	}

	var response anthropicResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return "", &Error{Kind: KindMalformed, Err: fmt.Errorf("parse response: %w", err)}
	}

	if len(response.Content) == 0 || response.Content[0].Text == "" {
		return "", &Error{Kind: KindMalformed, Err: errors.New("no content in response")}
	}

	return strings.TrimSpace(response.Content[0].Text), nil
}

// classify maps an invoke error to a failure kind
func classify(err error) Kind {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDeniedException", "UnrecognizedClientException", "ExpiredTokenException", "InvalidSignatureException":
			return KindAuth
		}
	}
	return KindNetwork
}

// ModelID returns the configured model identifier
func (c *Client) ModelID() string {
	return c.modelID
}
