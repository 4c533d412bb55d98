package advice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// Defaults for the OpenAI generator.
const (
	DefaultModel           = "gpt-4o-mini"
	DefaultMaxOutputTokens = 500
)

// adviceOutput is the structured output requested for Advise.
type adviceOutput struct {
	Response         string `json:"response" jsonschema:"required,description=Supportive reply to the user"`
	FollowUpQuestion string `json:"follow_up_question" jsonschema:"required,description=One follow-up question"`
}

// questionOutput is the structured output requested for Ask.
type questionOutput struct {
	Question string `json:"question" jsonschema:"required,description=The next question to ask"`
}

var (
	adviceSchema   = generateSchema[adviceOutput]()
	questionSchema = generateSchema[questionOutput]()
)

// OpenAIGenerator generates advice with the OpenAI Responses API.
type OpenAIGenerator struct {
	client          *openai.Client
	model           string
	maxOutputTokens int64
	delays          []time.Duration
}

// OpenAIOption configures an OpenAIGenerator.
type OpenAIOption func(*openAIOptions)

type openAIOptions struct {
	model           string
	maxOutputTokens int64
	delays          []time.Duration
	requestOptions  []option.RequestOption
}

// WithModel sets the model name.
func WithModel(model string) OpenAIOption {
	return func(o *openAIOptions) {
		if model != "" {
			o.model = model
		}
	}
}

// WithMaxOutputTokens caps the response length.
func WithMaxOutputTokens(n int64) OpenAIOption {
	return func(o *openAIOptions) {
		if n > 0 {
			o.maxOutputTokens = n
		}
	}
}

// WithRetryDelays sets the waits between attempts after a rate limit or
// server error. No delays means a single attempt.
func WithRetryDelays(delays ...time.Duration) OpenAIOption {
	return func(o *openAIOptions) {
		o.delays = delays
	}
}

// WithRequestOptions passes extra options to the OpenAI client.
func WithRequestOptions(opts ...option.RequestOption) OpenAIOption {
	return func(o *openAIOptions) {
		o.requestOptions = append(o.requestOptions, opts...)
	}
}

// NewOpenAIGenerator creates a generator using apiKey.
func NewOpenAIGenerator(apiKey string, opts ...OpenAIOption) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	o := openAIOptions{
		model:           DefaultModel,
		maxOutputTokens: DefaultMaxOutputTokens,
		delays:          []time.Duration{5 * time.Second, 30 * time.Second},
	}
	for _, opt := range opts {
		opt(&o)
	}

	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, o.requestOptions...)
	client := openai.NewClient(reqOpts...)

	return &OpenAIGenerator{
		client:          &client,
		model:           o.model,
		maxOutputTokens: o.maxOutputTokens,
		delays:          o.delays,
	}, nil
}

// Model returns the configured model name.
func (g *OpenAIGenerator) Model() string {
	return g.model
}

// Advise implements Generator.
func (g *OpenAIGenerator) Advise(ctx context.Context, req Request) (*Advice, error) {
	p := promptFor(req.Tag)
	params := g.params(p.system+"\n\n"+adviceInstructions, advicePrompt(req),
		"emotional_support_reply", "Supportive reply and follow-up question", adviceSchema)

	resp, err := g.callWithRetry(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("generating advice: %w", err)
	}

	var out adviceOutput
	if err := decodeModelJSON(resp.OutputText(), &out); err != nil {
		return nil, fmt.Errorf("decoding advice: %w", err)
	}
	if strings.TrimSpace(out.Response) == "" {
		return nil, errors.New("decoding advice: empty response")
	}

	return &Advice{
		Response:         strings.TrimSpace(out.Response),
		FollowUpQuestion: TidyQuestion(out.FollowUpQuestion, req.Tag),
		Model:            g.model,
	}, nil
}

// Ask implements Generator.
func (g *OpenAIGenerator) Ask(ctx context.Context, req Request) (*Question, error) {
	p := promptFor(req.Tag)
	params := g.params(p.question+"\n\n"+questionInstructions, questionPrompt(req),
		"follow_up_question", "Next question in a supportive conversation", questionSchema)

	resp, err := g.callWithRetry(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("generating question: %w", err)
	}

	var out questionOutput
	if err := decodeModelJSON(resp.OutputText(), &out); err != nil {
		return nil, fmt.Errorf("decoding question: %w", err)
	}

	return &Question{
		Question:           TidyQuestion(out.Question, req.Tag),
		Model:              g.model,
		ConversationLength: len(req.History),
		EmotionTag:         req.Tag,
	}, nil
}

func (g *OpenAIGenerator) params(instructions, input, name, description string, schema map[string]any) responses.ResponseNewParams {
	return responses.ResponseNewParams{
		Model:           g.model,
		MaxOutputTokens: openai.Int(g.maxOutputTokens),
		Instructions:    openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(input, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        name,
					Schema:      schema,
					Strict:      openai.Bool(true),
					Description: openai.String(description),
					Type:        "json_schema",
				},
			},
		},
	}
}

func (g *OpenAIGenerator) callWithRetry(ctx context.Context, params responses.ResponseNewParams) (*responses.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := g.client.Responses.New(ctx, params)
		if err == nil {
			return resp, nil
		}
		if attempt >= len(g.delays) || !retryable(err) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.delays[attempt]):
		}
	}
}

// retryable reports whether err is an API error worth retrying: rate
// limiting or a server-side failure.
func retryable(err error) bool {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError
}

// decodeModelJSON unmarshals model output, tolerating text around the JSON
// object.
func decodeModelJSON(text string, v any) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("empty model output")
	}
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in model output")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("unmarshal model output: %w", err)
	}
	return nil
}

func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	b, err := reflector.Reflect(v).MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	strictObjects(m)
	return m
}

// strictObjects marks every object closed with all properties required, as
// strict structured output demands.
func strictObjects(schema map[string]any) {
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
		if props, ok := schema["properties"].(map[string]any); ok && len(props) > 0 {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			schema["required"] = required
		}
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		for _, p := range props {
			if pm, ok := p.(map[string]any); ok {
				strictObjects(pm)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		strictObjects(items)
	}
	delete(schema, "$schema")
	delete(schema, "$id")
}
