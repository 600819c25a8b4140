package posts

import (
	"encoding/json"
	"strings"
)

type Post struct {
	Id         string    `json:"id"`
	Text       string    `json:"text"`
	Author     string    `json:"author"`
	Timestamp  Timestamp `json:"timestamp"`
	ParentId   *string   `json:"parent_id"`
	ThreadId   *string   `json:"thread_id"`
	Mentions   []string  `json:"mentions"`
	Responses  []string  `json:"responses"`
	IsExisting bool      `json:"is_existing"`
}

// ExtractMentions pulls @handles out of the text in order, keeping
// duplicates. Trailing sentence punctuation is stripped from each handle.
func ExtractMentions(text string) []string {
	mentions := []string{}
	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, "@") {
			mentions = append(mentions, strings.TrimRight(word[1:], ",.!?"))
		}
	}
	return mentions
}

// unwrapDisplayText keeps the legacy decode path for double-encoded payloads:
// if the text is itself a JSON object carrying display_text, only the inner
// value is stored.
func unwrapDisplayText(text string) string {
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return text
	}
	if inner, ok := parsed["display_text"].(string); ok {
		return inner
	}
	return text
}
