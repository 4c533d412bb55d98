package advice

import (
	"context"
	"fmt"
	"strings"

	"github.com/justestif/go-affect-fusion/internal/vad"
)

// CannedModel names the canned generator in responses.
const CannedModel = "canned"

var cannedResponses = map[vad.Tag]string{
	vad.TagHappy: "You seem to be in a good mood! Keeping and growing positive feelings like this really matters. " +
		"Share the joy with people around you and enjoy this moment fully. " +
		"Writing down good experiences can also help you through harder times later.",
	vad.TagSad: "It sounds like you are feeling sad right now. That is a natural feeling, so try not to be too hard on yourself. " +
		"Talk with someone you trust, or take a gentle walk to clear your mind. Feelings do change with time.",
	vad.TagAngry: "It sounds like you are feeling angry. That is a natural reaction, but handling it in a healthy way is important. " +
		"Take a few deep breaths and give yourself some time until the feeling settles. " +
		"Looking at what caused the anger can help too.",
	vad.TagAnxious: "It sounds like you are feeling anxious. Anxiety often comes from worrying about the future, so try to focus on the present. " +
		"Look around and find five things you can see, four you can touch, three you can hear, two you can smell and one you can taste. " +
		"Focusing on your senses like this can ease anxiety.",
	vad.TagNeutral: "Your mood seems fairly neutral right now. This is a good chance to notice and express your feelings more clearly. " +
		"Observe how you feel and keep an emotion journal if it helps. Understanding your emotions supports good self-care.",
}

var fallbackQuestions = map[vad.Tag]string{
	vad.TagAngry:   "What situation is making you feel most angry right now?",
	vad.TagSad:     "What is making you feel the saddest right now?",
	vad.TagAnxious: "What are you most worried about right now?",
	vad.TagHappy:   "What is making you feel good right now?",
	vad.TagNeutral: "How has your day been so far?",
}

const defaultFallbackQuestion = "What is on your mind right now?"

var conversationQuestions = []string{
	"What was the happiest moment of your day?",
	"What has been difficult for you recently?",
	"If you described your mood in one word, what would it be?",
	"What gives you the most comfort?",
	"What would you most like to do right now?",
	"How would you like to spend the rest of today?",
	"What are you most grateful for?",
	"What do you need most right now?",
	"What causes you the most stress?",
	"What helps you feel better?",
}

// FallbackQuestion returns the default follow-up question for tag.
func FallbackQuestion(tag vad.Tag) string {
	if q, ok := fallbackQuestions[tag]; ok {
		return q
	}
	return defaultFallbackQuestion
}

// CannedGenerator answers from fixed text. It never fails.
type CannedGenerator struct{}

// NewCannedGenerator creates a canned generator.
func NewCannedGenerator() *CannedGenerator {
	return &CannedGenerator{}
}

// Advise implements Generator. Unknown tags receive the neutral response.
func (g *CannedGenerator) Advise(ctx context.Context, req Request) (*Advice, error) {
	response, ok := cannedResponses[req.Tag]
	if !ok {
		response = cannedResponses[vad.TagNeutral]
	}

	if s := req.Strategy; s != nil && s.Success {
		techniques := s.Strategy.Techniques
		if len(techniques) > 2 {
			techniques = techniques[:2]
		}
		response += fmt.Sprintf("\n\nRecommended strategy: %s\nKey techniques: %s",
			s.Strategy.Name, strings.Join(techniques, ", "))
	}

	return &Advice{
		Response:         response,
		FollowUpQuestion: FallbackQuestion(req.Tag),
		Model:            CannedModel,
	}, nil
}

// Ask implements Generator. Questions rotate with conversation length.
func (g *CannedGenerator) Ask(ctx context.Context, req Request) (*Question, error) {
	q := conversationQuestions[len(req.History)%len(conversationQuestions)]
	return &Question{
		Question:           q,
		Model:              CannedModel,
		ConversationLength: len(req.History),
		EmotionTag:         req.Tag,
	}, nil
}
