// Package advice generates supportive responses and follow-up questions for
// an analysed emotional state.
package advice

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/justestif/go-affect-fusion/internal/strategy"
	"github.com/justestif/go-affect-fusion/internal/vad"
)

// ErrMissingAPIKey is returned when the OpenAI generator is built without a key.
var ErrMissingAPIKey = errors.New("missing OpenAI API key")

// Question length bounds, in runes.
const (
	MinQuestionLength = 10
	MaxQuestionLength = 100
)

// Turn is one exchange of a conversation.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Request describes the state to respond to.
type Request struct {
	Tag      vad.Tag
	VAD      vad.Triple
	Context  string
	Strategy *strategy.Result
	History  []Turn
}

// Advice is a generated response with a follow-up question.
type Advice struct {
	Response         string `json:"response"`
	FollowUpQuestion string `json:"follow_up_question"`
	Model            string `json:"model"`
}

// Question is a generated follow-up question.
type Question struct {
	Question           string  `json:"question"`
	Model              string  `json:"model"`
	ConversationLength int     `json:"conversation_length"`
	EmotionTag         vad.Tag `json:"emotion_tag"`
}

// Generator produces advice and questions.
type Generator interface {
	Advise(ctx context.Context, req Request) (*Advice, error)
	Ask(ctx context.Context, req Request) (*Question, error)
}

// TidyQuestion trims q, replaces questions that are too short with the tag's
// fallback and truncates long ones with "...".
func TidyQuestion(q string, tag vad.Tag) string {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinQuestionLength {
		return FallbackQuestion(tag)
	}
	if utf8.RuneCountInString(q) > MaxQuestionLength {
		runes := []rune(q)
		return string(runes[:MaxQuestionLength]) + "..."
	}
	return q
}
