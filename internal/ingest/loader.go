// Package ingest loads a corpus work from its JSON seed file into the
// store. It replaces hand-run import scripts; network scraping and
// document conversion happen upstream of the seed format.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/concordlabs/concord/internal/scope/corpus"
	"github.com/rs/zerolog"
)

// defaultBatchSize bounds passage insert round trips.
const defaultBatchSize = 50

// WorkFile is the on-disk JSON format for one work.
type WorkFile struct {
	Work     WorkSeed      `json:"work"`
	Chapters []ChapterSeed `json:"chapters"`
	Terms    []TermSeed    `json:"terms"`
	Parts    []PartSeed    `json:"parts"`
}

// WorkSeed describes the work itself.
type WorkSeed struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Year        string `json:"year"`
	Description string `json:"description"`
}

// ChapterSeed is one chapter with its sections and passages.
type ChapterSeed struct {
	ID            int           `json:"id"`
	ChapterNumber int           `json:"chapter_number"`
	Title         string        `json:"title"`
	Sections      []SectionSeed `json:"sections"`
	Passages      []PassageSeed `json:"passages"`
}

// SectionSeed is one section heading.
type SectionSeed struct {
	Section int    `json:"section"`
	Title   string `json:"title"`
}

// PassageSeed is one paragraph of text.
type PassageSeed struct {
	Paragraph   int            `json:"paragraph"`
	Section     *int           `json:"section"`
	Text        string         `json:"text"`
	Translation string         `json:"translation"`
	Footnotes   []FootnoteSeed `json:"footnotes"`
}

// FootnoteSeed is one footnote attached to a passage.
type FootnoteSeed struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// TermSeed is one glossary entry.
type TermSeed struct {
	ID         string `json:"id"`
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Tags       string `json:"tags"`
	Aliases    string `json:"aliases"`
}

// PartSeed is one part grouping a chapter range.
type PartSeed struct {
	Number       int    `json:"number"`
	Title        string `json:"title"`
	StartChapter int    `json:"start_chapter"`
	EndChapter   int    `json:"end_chapter"`
}

// Stats counts the records a load created.
type Stats struct {
	WorkID    int
	Chapters  int
	Sections  int
	Passages  int
	Terms     int
	Footnotes int
	Parts     int
}

// Loader writes seed files into a corpus store.
type Loader struct {
	store     corpus.Store
	batchSize int
	logger    zerolog.Logger
}

// NewLoader creates a loader with the default batch size
func NewLoader(store corpus.Store, logger zerolog.Logger) *Loader {
	return &Loader{
		store:     store,
		batchSize: defaultBatchSize,
		logger:    logger,
	}
}

// Load parses one work seed file and inserts its records. Passage ids
// follow the "{work}.ch{chapter}.p{paragraph}" convention so they stay
// stable across re-imports of the same work.
func (l *Loader) Load(ctx context.Context, r io.Reader) (*Stats, error) {
	var file WorkFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if file.Work.Title == "" {
		return nil, fmt.Errorf("seed file has no work title")
	}

	workID, err := l.store.InsertWork(ctx, corpus.Work{
		Title:       file.Work.Title,
		Author:      file.Work.Author,
		Year:        file.Work.Year,
		Description: file.Work.Description,
	})
	if err != nil {
		return nil, err
	}
	stats := &Stats{WorkID: workID}

	for _, ch := range file.Chapters {
		if err := l.store.InsertChapter(ctx, corpus.Chapter{
			ID:            ch.ID,
			WorkID:        workID,
			ChapterNumber: ch.ChapterNumber,
			Title:         ch.Title,
		}); err != nil {
			return stats, err
		}
		stats.Chapters++

		for _, sec := range ch.Sections {
			if err := l.store.InsertSection(ctx, corpus.Section{
				ID:            fmt.Sprintf("%d.ch%d.sec%d", workID, ch.ID, sec.Section),
				WorkID:        workID,
				ChapterID:     ch.ID,
				SectionNumber: sec.Section,
				Title:         sec.Title,
			}); err != nil {
				return stats, err
			}
			stats.Sections++
		}

		batch := make([]corpus.Passage, 0, l.batchSize)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			if err := l.store.InsertPassages(ctx, batch); err != nil {
				return err
			}
			stats.Passages += len(batch)
			batch = batch[:0]
			return nil
		}
		for _, p := range ch.Passages {
			id := fmt.Sprintf("%d.ch%d.p%d", workID, ch.ID, p.Paragraph)
			batch = append(batch, corpus.Passage{
				ID:            id,
				WorkID:        workID,
				ChapterID:     ch.ID,
				SectionNumber: p.Section,
				Paragraph:     p.Paragraph,
				Text:          p.Text,
				Translation:   p.Translation,
			})
			if len(batch) >= l.batchSize {
				if err := flush(); err != nil {
					return stats, err
				}
			}
			for _, fn := range p.Footnotes {
				if err := l.store.InsertFootnote(ctx, corpus.Footnote{
					PassageID:      id,
					FootnoteNumber: fn.Number,
					Text:           fn.Text,
				}); err != nil {
					return stats, err
				}
				stats.Footnotes++
			}
		}
		if err := flush(); err != nil {
			return stats, err
		}
	}

	for _, t := range file.Terms {
		if err := l.store.InsertTerm(ctx, corpus.Term{
			ID:         t.ID,
			WorkID:     workID,
			Term:       t.Term,
			Definition: t.Definition,
			Tags:       t.Tags,
			Aliases:    t.Aliases,
		}); err != nil {
			return stats, err
		}
		stats.Terms++
	}

	for _, p := range file.Parts {
		if err := l.store.InsertPart(ctx, corpus.Part{
			WorkID:       workID,
			Number:       p.Number,
			Title:        p.Title,
			StartChapter: p.StartChapter,
			EndChapter:   p.EndChapter,
		}); err != nil {
			return stats, err
		}
		stats.Parts++
	}

	l.logger.Info().
		Int("work_id", workID).
		Int("chapters", stats.Chapters).
		Int("passages", stats.Passages).
		Int("terms", stats.Terms).
		Msg("work seeded")
	return stats, nil
}
