package db

import "time"

// LexiconEntry is one (word, emotion) flag of the emotion lexicon.
type LexiconEntry struct {
	Word        string
	EnglishWord string
	Emotion     string
	Flag        int
	UpdatedAt   time.Time
}
