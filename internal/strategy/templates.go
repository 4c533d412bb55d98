package strategy

import "github.com/justestif/go-affect-fusion/internal/vad"

// templates holds the base strategy per tag. Entries are never handed out
// directly; callers always receive a clone.
var templates = map[vad.Tag]Strategy{
	vad.TagAngry: {
		Name:        "Anger management",
		Description: "Ways to manage and express anger in a healthy way",
		Techniques: []string{
			"Deep breathing and relaxation",
			"Analysing what triggered the anger",
			"Healthy communication",
			"Taking a time-out",
			"Releasing energy through physical activity",
		},
		Exercises: []string{
			"10-second breath: inhale deeply and exhale slowly",
			"Anger journal: write down feelings and thoughts",
			"Alternative thinking: look at the situation from another angle",
		},
		Resources: []string{
			"Use an anger management app",
			"Consider talking to a professional",
			"Join a stress management activity",
		},
	},
	vad.TagSad: {
		Name:        "Low mood relief",
		Description: "Ways to lift low mood and encourage positive thinking",
		Techniques: []string{
			"Activity scheduling",
			"Positive cognitive restructuring",
			"Staying socially connected",
			"Increasing physical activity",
			"Self-care activities",
		},
		Exercises: []string{
			"Gratitude journal: note three things you are grateful for each day",
			"List enjoyable activities and do one",
			"Challenge a negative thought",
		},
		Resources: []string{
			"Cognitive behavioural therapy programme",
			"Join a support group",
			"Talk to a counsellor",
		},
	},
	vad.TagAnxious: {
		Name:        "Anxiety relief",
		Description: "Ways to reduce anxiety and find a sense of stability",
		Techniques: []string{
			"Progressive muscle relaxation",
			"Mindfulness meditation",
			"Focusing on the present moment",
			"Identifying the source of anxiety",
			"Systematic desensitisation",
		},
		Exercises: []string{
			"5-4-3-2-1 grounding: notice your surroundings with each sense",
			"Box breathing: breathe in for 4 seconds, out for 4 seconds",
			"Anxiety journal: record patterns in your worry",
		},
		Resources: []string{
			"Use a meditation app",
			"Take a yoga or tai chi class",
			"See a licensed therapist",
		},
	},
	vad.TagHappy: {
		Name:        "Sustaining positive emotion",
		Description: "Ways to keep positive feelings going and broaden them",
		Techniques: []string{
			"Savouring positive experiences",
			"Recording achievements",
			"Sharing joy with others",
			"Setting future goals",
			"Self-encouragement",
		},
		Exercises: []string{
			"Take a photo of a good moment",
			"Keep an achievement journal",
			"Write a thank-you letter",
		},
		Resources: []string{
			"Positive psychology workshop",
			"Take up a hobby",
			"Volunteer",
		},
	},
	vad.TagNeutral: {
		Name:        "Emotional awareness and expression",
		Description: "Ways to recognise and express emotions more clearly",
		Techniques: []string{
			"Emotion labelling practice",
			"Observing body sensations",
			"Practising emotional expression",
			"Building self-awareness",
			"Keeping an emotion journal",
		},
		Exercises: []string{
			"Fill in an emotion chart",
			"Body scan meditation",
			"Emotion expression role-play",
		},
		Resources: []string{
			"Emotional awareness workbook",
			"Mindfulness programme",
			"Art therapy activities",
		},
	},
}

type overlay struct {
	focus    string
	priority []string
}

var (
	highArousalOverlay = overlay{
		focus:    "relaxation and calming",
		priority: []string{"Deep breathing", "Muscle relaxation", "Mindfulness"},
	}
	lowArousalOverlay = overlay{
		focus:    "activation and motivation",
		priority: []string{"Activity scheduling", "Exercise", "Social connection"},
	}
	lowValenceOverlay = overlay{
		focus:    "encouraging positive thinking",
		priority: []string{"Gratitude practice", "Positive reframing", "Pleasant activities"},
	}
	highDominanceOverlay = overlay{
		focus:    "cooperation and empathy",
		priority: []string{"Active listening", "Expressing empathy", "Collaborative problem solving"},
	}
)

var (
	urgentRecommendations = []string{
		"Your emotions are strong right now, so start with a technique you can apply immediately.",
		"Consider reaching out to a professional for support if you need it.",
	}
	stableRecommendations = []string{
		"Your emotions are stable, so this is a good time to plan long-term self-care.",
		"Build a daily habit for looking after your emotions.",
	}
	tagRecommendations = map[vad.Tag]string{
		vad.TagAngry:   "Give yourself some time and take deep breaths until the anger settles.",
		vad.TagSad:     "Rather than staying alone, talk with someone you trust.",
		vad.TagAnxious: "Focus on this moment and set aside anxious thoughts about the future for a while.",
	}
)

var nextSteps = []string{
	"1. Pick one of the suggested techniques and try it.",
	"2. Notice how it works and try another technique if needed.",
	"3. Practise the technique you chose consistently for a week.",
	"4. Record changes in your emotions and look for patterns.",
	"5. Build the techniques that work into your daily life.",
	"6. If needed, talk to a professional for more structured help.",
}
