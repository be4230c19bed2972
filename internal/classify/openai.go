package classify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const classifierInstructions = "You are a binary sentiment classifier. " +
	"Classify the user's message as exactly one of \"negative\" or \"positive\". " +
	"You must always pick one of the two labels, even for empty, ambiguous, or non-linguistic input."

type sentimentResult struct {
	Label string `json:"label" jsonschema:"enum=negative,enum=positive" jsonschema_description:"Sentiment of the message."`
}

var sentimentSchema = generateSchema[sentimentResult]()

// OpenAIClassifier classifies sentiment through the OpenAI Responses API
// using a strict structured output, so the model cannot produce a third label.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a classifier backed by the OpenAI API.
func NewOpenAI(apiKey, model string) *OpenAIClassifier {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClassifier{client: &client, model: model}
}

// NewOpenAIWithClient creates a classifier with a preconfigured client,
// used by tests to point at a stub server.
func NewOpenAIWithClient(client *openai.Client, model string) *OpenAIClassifier {
	return &OpenAIClassifier{client: client, model: model}
}

// Classify sends the (truncated) text to the model and decodes the forced
// binary label from the structured output.
func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (Label, error) {
	if c.client == nil {
		return "", fmt.Errorf("openai classifier: client is nil")
	}
	if c.model == "" {
		return "", fmt.Errorf("openai classifier: model is empty")
	}

	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "SentimentResult",
			Schema:      sentimentSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Binary sentiment label JSON"),
			Type:        "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(16),
		Instructions:    openai.String(classifierInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(Truncate(text), responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("classify request: %w", err)
	}

	var out sentimentResult
	if err := json.Unmarshal([]byte(resp.OutputText()), &out); err != nil {
		return "", fmt.Errorf("decode classifier output: %w", err)
	}
	return ParseLabel(out.Label)
}

// generateSchema reflects T into a JSON schema acceptable to the OpenAI
// strict structured-output mode: no references, no additional properties,
// every field required.
func generateSchema[T any]() map[string]interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)

	b, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	ensureStrictObject(m)
	return m
}

func ensureStrictObject(schema map[string]interface{}) {
	if schemaType, ok := schema["type"].(string); ok && schemaType == "object" {
		schema["additionalProperties"] = false

		if properties, ok := schema["properties"].(map[string]interface{}); ok {
			var required []string
			for name := range properties {
				required = append(required, name)
			}
			if len(required) > 0 {
				schema["required"] = required
			}
			for _, prop := range properties {
				if propMap, ok := prop.(map[string]interface{}); ok {
					ensureStrictObject(propMap)
				}
			}
		}
	}
}
