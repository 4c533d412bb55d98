package advice

import (
	"fmt"
	"strings"

	"github.com/justestif/go-affect-fusion/internal/vad"
)

type prompt struct {
	system   string
	question string
	state    string
}

var prompts = map[vad.Tag]prompt{
	vad.TagAngry: {
		system:   "You are an anger management specialist. Understand the user's anger and give advice that is empathetic and practical.",
		question: "You are an anger management specialist. Ask a question that helps the user find the cause of their anger and a healthy way to cope.",
		state:    "I am feeling angry right now.",
	},
	vad.TagSad: {
		system:   "You are a specialist in relieving low mood. Acknowledge and comfort the user's sadness and encourage positive change.",
		question: "You are a specialist in relieving low mood. Ask a question that helps the user understand their sadness and move towards positive change.",
		state:    "I am feeling sad right now.",
	},
	vad.TagAnxious: {
		system:   "You are an anxiety relief specialist. Understand the user's anxiety and offer practical ways to feel steady.",
		question: "You are an anxiety relief specialist. Ask a question that helps the user identify the source of their anxiety and how to cope with it.",
		state:    "I am feeling anxious right now.",
	},
	vad.TagHappy: {
		system:   "You are a positive psychology specialist. Suggest ways for the user to sustain and broaden their positive feelings.",
		question: "You are a positive psychology specialist. Ask a question that helps the user understand what brings them joy and create more of it.",
		state:    "I am in a good mood right now.",
	},
	vad.TagNeutral: {
		system:   "You are an emotional awareness specialist. Help the user understand and express their feelings better.",
		question: "You are an emotional awareness specialist. Ask a question that explores the user's current situation and feelings.",
		state:    "My mood is fairly neutral right now.",
	},
}

var defaultPrompt = prompt{
	system:   "You are an emotion management specialist. Analyse the user's emotional state and give practical advice.",
	question: "You are an emotion management specialist. Ask a question that helps the user find the cause of their feelings and manage them in a healthy way.",
}

const adviceInstructions = `Reply in JSON with two fields.
"response": a warm, practical reply of at most five sentences that reflects the user's state and the recommended strategy.
"follow_up_question": one natural, friendly question that explores the cause of the feeling or a way to cope. One sentence only.`

const questionInstructions = `Based on the conversation and the current emotional state, write the next single question that helps understand and support the user.
The question must be natural and friendly, connect to the user's previous answers, explore causes or coping, and be one sentence.
Reply in JSON with a single field "question".`

func promptFor(tag vad.Tag) prompt {
	if p, ok := prompts[tag]; ok {
		return p
	}
	return defaultPrompt
}

// stateLine describes the emotional state the way a user would.
func stateLine(tag vad.Tag, t vad.Triple) string {
	p := promptFor(tag)
	state := p.state
	if state == "" {
		state = fmt.Sprintf("My current emotional state is %s.", tag)
	}
	return fmt.Sprintf("%s VAD score: Valence=%.2f, Arousal=%.2f, Dominance=%.2f.",
		state, t.Valence, t.Arousal, t.Dominance)
}

// advicePrompt builds the user message for Advise.
func advicePrompt(req Request) string {
	var b strings.Builder
	b.WriteString(stateLine(req.Tag, req.VAD))

	if req.Context != "" {
		fmt.Fprintf(&b, "\nMy situation: %s", req.Context)
	}

	if s := req.Strategy; s != nil && s.Success {
		techniques := s.Strategy.Techniques
		if len(techniques) > 3 {
			techniques = techniques[:3]
		}
		recs := s.PersonalizedRecommendations
		if len(recs) > 2 {
			recs = recs[:2]
		}
		fmt.Fprintf(&b, "\nRecommended strategy:\n- Name: %s\n- Techniques: %s\n- Recommendations: %s",
			s.Strategy.Name, strings.Join(techniques, ", "), strings.Join(recs, " "))
	}

	if len(req.History) > 0 {
		b.WriteString("\nConversation so far:\n")
		b.WriteString(historyText(req.History))
	}
	return b.String()
}

// questionPrompt builds the user message for Ask.
func questionPrompt(req Request) string {
	var b strings.Builder
	b.WriteString(stateLine(req.Tag, req.VAD))
	b.WriteString("\nConversation so far:\n")
	b.WriteString(historyText(req.History))
	return b.String()
}

func historyText(history []Turn) string {
	if len(history) == 0 {
		return "The conversation has not started yet."
	}
	var b strings.Builder
	for i, turn := range history {
		fmt.Fprintf(&b, "Q%d: %s\nA%d: %s\n", i+1, turn.Question, i+1, turn.Answer)
	}
	return strings.TrimSpace(b.String())
}
