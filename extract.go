package aiagent

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// textPaths are tried in order until one resolves to a string. This covers
// plain {"text":...}, ollama-style generate, openai completions and chat,
// anthropic messages and gemini candidates.
var textPaths = []string{
	"text",
	"response",
	"choices.0.text",
	"choices.0.message.content",
	"message.content",
	"content.0.text",
	"candidates.0.content.parts.0.text",
	"output",
	"result",
	"data.text",
}

var errNoText = errors.New("no text field in response")

// Output is what gets printed on success
type Output struct {
	Text string `json:"text"`
}

// Extract pulls the generated text out of a response body
func Extract(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("aiagent: invalid JSON in response")
	}
	results := gjson.GetManyBytes(body, textPaths...)
	for _, res := range results {
		if res.Type == gjson.String {
			return res.String(), nil
		}
	}
	return "", errNoText
}

// Marshal encodes text as an Output
func Marshal(text string) ([]byte, error) {
	return json.Marshal(&Output{Text: text})
}
