package text

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/justestif/go-affect-fusion/internal/db"
)

// Column names of the NRC EmoLex translation files.
const (
	EnglishWordColumn = "English Word"
	KoreanWordColumn  = "Korean Word"
)

// DefaultEmotions is the emotion column order used when no lexicon is loaded.
var DefaultEmotions = []string{"joy", "trust", "anticipation", "surprise", "anger", "disgust", "fear", "sadness"}

// Lexicon maps words to per-emotion flags. It is immutable once built.
type Lexicon struct {
	emotions []string
	words    map[string][]int
	english  map[string]string
}

// NewLexicon builds a lexicon from emotion columns and word flags. Missing
// emotions in a word's flag map count as 0.
func NewLexicon(emotions []string, words map[string]map[string]int) *Lexicon {
	if len(emotions) == 0 {
		emotions = DefaultEmotions
	}
	l := &Lexicon{
		emotions: slices.Clone(emotions),
		words:    make(map[string][]int, len(words)),
		english:  make(map[string]string),
	}
	for word, flags := range words {
		row := make([]int, len(l.emotions))
		for i, e := range l.emotions {
			row[i] = flags[e]
		}
		l.words[word] = row
	}
	return l
}

// EmptyLexicon returns a lexicon that matches nothing.
func EmptyLexicon() *Lexicon {
	return NewLexicon(nil, nil)
}

// Emotions returns the emotion columns in order.
func (l *Lexicon) Emotions() []string {
	return slices.Clone(l.emotions)
}

// Len returns the number of words.
func (l *Lexicon) Len() int {
	return len(l.words)
}

// Lookup returns the flag row for word, aligned with Emotions.
func (l *Lexicon) Lookup(word string) ([]int, bool) {
	row, ok := l.words[word]
	return row, ok
}

// Entries flattens the lexicon into database rows.
func (l *Lexicon) Entries() []db.LexiconEntry {
	entries := make([]db.LexiconEntry, 0, len(l.words)*len(l.emotions))
	for word, row := range l.words {
		for i, e := range l.emotions {
			entries = append(entries, db.LexiconEntry{
				Word:        word,
				EnglishWord: l.english[word],
				Emotion:     e,
				Flag:        row[i],
			})
		}
	}
	return entries
}

// LoadTSV parses an NRC EmoLex translation file. wordColumn names the column
// holding the lookup word; every column other than the two word columns is an
// emotion. Rows with an empty word are skipped.
func LoadTSV(r io.Reader, wordColumn string) (*Lexicon, error) {
	if wordColumn == "" {
		wordColumn = KoreanWordColumn
	}

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading lexicon header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	wordIdx, englishIdx := -1, -1
	var emotions []string
	var emotionIdx []int
	for i, col := range header {
		col = strings.TrimSpace(col)
		switch col {
		case wordColumn:
			wordIdx = i
		case EnglishWordColumn:
			englishIdx = i
		}
		if col == wordColumn || col == EnglishWordColumn || col == KoreanWordColumn {
			continue
		}
		emotions = append(emotions, col)
		emotionIdx = append(emotionIdx, i)
	}
	if wordIdx < 0 {
		return nil, fmt.Errorf("lexicon header has no %q column", wordColumn)
	}

	l := &Lexicon{
		emotions: emotions,
		words:    make(map[string][]int),
		english:  make(map[string]string),
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading lexicon line %d: %w", line, err)
		}
		if wordIdx >= len(record) {
			continue
		}
		word := strings.TrimSpace(record[wordIdx])
		if word == "" {
			continue
		}

		row := make([]int, len(emotions))
		for j, idx := range emotionIdx {
			if idx >= len(record) {
				continue
			}
			v, err := strconv.Atoi(strings.TrimSpace(record[idx]))
			if err != nil {
				return nil, fmt.Errorf("lexicon line %d column %q: %w", line, emotions[j], err)
			}
			row[j] = v
		}
		l.words[word] = row
		if englishIdx >= 0 && englishIdx < len(record) {
			l.english[word] = strings.TrimSpace(record[englishIdx])
		}
	}

	return l, nil
}

// Source loads a lexicon.
type Source interface {
	Load(ctx context.Context) (*Lexicon, error)
}

// FileSource reads a TSV lexicon from disk.
type FileSource struct {
	Path       string
	WordColumn string
}

// Load implements Source.
func (s FileSource) Load(ctx context.Context) (*Lexicon, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening lexicon: %w", err)
	}
	defer f.Close()
	return LoadTSV(f, s.WordColumn)
}

// LexiconStore is the subset of the lexicon repository the loader needs.
type LexiconStore interface {
	Emotions(ctx context.Context) ([]string, error)
	Entries(ctx context.Context) ([]db.LexiconEntry, error)
}

// StoreSource loads the lexicon from the database.
type StoreSource struct {
	Store LexiconStore
}

// Load implements Source.
func (s StoreSource) Load(ctx context.Context) (*Lexicon, error) {
	emotions, err := s.Store.Emotions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading lexicon emotions: %w", err)
	}
	entries, err := s.Store.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading lexicon entries: %w", err)
	}

	words := make(map[string]map[string]int)
	english := make(map[string]string)
	for _, e := range entries {
		if words[e.Word] == nil {
			words[e.Word] = make(map[string]int)
		}
		words[e.Word][e.Emotion] = e.Flag
		if e.EnglishWord != "" {
			english[e.Word] = e.EnglishWord
		}
		if !slices.Contains(emotions, e.Emotion) {
			emotions = append(emotions, e.Emotion)
		}
	}

	l := NewLexicon(emotions, words)
	l.english = english
	return l, nil
}
