package corpus

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-memory Store used by tests and dry runs. Slices keep
// insertion order, which stands in for the corpus order the Postgres
// store produces with ORDER BY.
type Memory struct {
	mu         sync.RWMutex
	works      []Work
	chapters   []Chapter
	sections   []Section
	passages   []Passage
	terms      []Term
	parts      []Part
	footnotes  []Footnote
	links      []TermPassageLink
	nextWorkID int
	nextNoteID int
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{nextWorkID: 1, nextNoteID: 1}
}

// GetWorks returns all works
func (s *Memory) GetWorks(_ context.Context) ([]Work, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Work, len(s.works))
	copy(out, s.works)
	return out, nil
}

// GetWork returns one work by id
func (s *Memory) GetWork(_ context.Context, id int) (*Work, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.works {
		if s.works[i].ID == id {
			w := s.works[i]
			return &w, nil
		}
	}
	return nil, ErrNotFound
}

// GetTerms returns terms, optionally scoped to a work
func (s *Memory) GetTerms(_ context.Context, workID *int) ([]Term, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Term
	for _, t := range s.terms {
		if workID != nil && t.WorkID != *workID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// GetTerm returns one term by id
func (s *Memory) GetTerm(_ context.Context, id string) (*Term, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.terms {
		if s.terms[i].ID == id {
			t := s.terms[i]
			return &t, nil
		}
	}
	return nil, ErrNotFound
}

// GetChapters returns chapters, optionally scoped to a work
func (s *Memory) GetChapters(_ context.Context, workID *int) ([]Chapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Chapter
	for _, c := range s.chapters {
		if workID != nil && c.WorkID != *workID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// GetChapter returns one chapter by id
func (s *Memory) GetChapter(_ context.Context, id int) (*Chapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.chapters {
		if s.chapters[i].ID == id {
			c := s.chapters[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

// GetSections returns sections, optionally scoped to a work and chapter
func (s *Memory) GetSections(_ context.Context, workID, chapterID *int) ([]Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Section
	for _, sec := range s.sections {
		if workID != nil && sec.WorkID != *workID {
			continue
		}
		if chapterID != nil && sec.ChapterID != *chapterID {
			continue
		}
		out = append(out, sec)
	}
	return out, nil
}

// GetSection returns the section with the given number within a chapter
func (s *Memory) GetSection(_ context.Context, chapterID, sectionNumber int) (*Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.sections {
		if s.sections[i].ChapterID == chapterID && s.sections[i].SectionNumber == sectionNumber {
			sec := s.sections[i]
			return &sec, nil
		}
	}
	return nil, ErrNotFound
}

// GetPassages returns passages matching the filter in insertion order
func (s *Memory) GetPassages(_ context.Context, f PassageFilter) ([]Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Passage
	for _, p := range s.passages {
		if f.WorkID != nil && p.WorkID != *f.WorkID {
			continue
		}
		if f.ChapterID != nil && p.ChapterID != *f.ChapterID {
			continue
		}
		if f.SectionNumber != nil && (p.SectionNumber == nil || *p.SectionNumber != *f.SectionNumber) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// GetPassage returns one passage by id
func (s *Memory) GetPassage(_ context.Context, id string) (*Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.passages {
		if s.passages[i].ID == id {
			p := s.passages[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// RenumberPassage changes a passage id and retargets its links in one
// locked step
func (s *Memory) RenumberPassage(_ context.Context, oldID, newID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i := range s.passages {
		if s.passages[i].ID == oldID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	for i := range s.links {
		if s.links[i].PassageID == oldID {
			s.links[i].PassageID = newID
		}
	}
	for i := range s.footnotes {
		if s.footnotes[i].PassageID == oldID {
			s.footnotes[i].PassageID = newID
		}
	}
	s.passages[idx].ID = newID
	return nil
}

// GetParts returns parts, optionally scoped to a work
func (s *Memory) GetParts(_ context.Context, workID *int) ([]Part, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Part
	for _, p := range s.parts {
		if workID != nil && p.WorkID != *workID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// GetFootnotes returns a passage's footnotes
func (s *Memory) GetFootnotes(_ context.Context, passageID string) ([]Footnote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Footnote
	for _, f := range s.footnotes {
		if f.PassageID == passageID {
			out = append(out, f)
		}
	}
	return out, nil
}

// DeleteLinks removes link rows, optionally scoped to a work
func (s *Memory) DeleteLinks(_ context.Context, workID *int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLinksLocked(workID), nil
}

func (s *Memory) deleteLinksLocked(workID *int) int64 {
	var kept []TermPassageLink
	var removed int64
	for _, l := range s.links {
		if workID == nil || l.WorkID == *workID {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	s.links = kept
	return removed
}

// InsertLink inserts one link row
func (s *Memory) InsertLink(_ context.Context, link TermPassageLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.links {
		if l.TermID == link.TermID && l.PassageID == link.PassageID {
			return fmt.Errorf("%w: link (%s, %s)", ErrIntegrity, link.TermID, link.PassageID)
		}
	}
	s.links = append(s.links, link)
	return nil
}

// LinkExists reports whether a (term, passage) link row exists
func (s *Memory) LinkExists(_ context.Context, termID, passageID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.links {
		if l.TermID == termID && l.PassageID == passageID {
			return true, nil
		}
	}
	return false, nil
}

// ReplaceLinks swaps the link set for the given scope under one lock
func (s *Memory) ReplaceLinks(_ context.Context, workID *int, links []TermPassageLink) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLinksLocked(workID)
	s.links = append(s.links, links...)
	return len(links), nil
}

// GetLinks returns a page of a term's links joined with passage position
// and chapter/section titles
func (s *Memory) GetLinks(_ context.Context, termID string, workID *int, offset, limit int) ([]LinkView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var views []LinkView
	for _, l := range s.links {
		if l.TermID != termID {
			continue
		}
		if workID != nil && l.WorkID != *workID {
			continue
		}
		var p *Passage
		for i := range s.passages {
			if s.passages[i].ID == l.PassageID {
				p = &s.passages[i]
				break
			}
		}
		if p == nil {
			continue
		}
		v := LinkView{
			PassageID:     p.ID,
			ChapterID:     p.ChapterID,
			SectionNumber: p.SectionNumber,
			Paragraph:     p.Paragraph,
			TextSnippet:   l.TextSnippet,
			WorkID:        l.WorkID,
		}
		for _, c := range s.chapters {
			if c.ID == p.ChapterID {
				v.ChapterTitle = c.Title
				break
			}
		}
		if p.SectionNumber != nil {
			for _, sec := range s.sections {
				if sec.ChapterID == p.ChapterID && sec.SectionNumber == *p.SectionNumber {
					title := sec.Title
					v.SectionTitle = &title
					break
				}
			}
		}
		views = append(views, v)
	}
	if offset >= len(views) {
		return nil, nil
	}
	views = views[offset:]
	if limit > 0 && limit < len(views) {
		views = views[:limit]
	}
	return views, nil
}

// CountLinks returns the number of links for a term
func (s *Memory) CountLinks(_ context.Context, termID string, workID *int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, l := range s.links {
		if l.TermID != termID {
			continue
		}
		if workID != nil && l.WorkID != *workID {
			continue
		}
		count++
	}
	return count, nil
}

// InsertWork inserts a work and returns its assigned id
func (s *Memory) InsertWork(_ context.Context, w Work) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == 0 {
		w.ID = s.nextWorkID
	}
	if w.ID >= s.nextWorkID {
		s.nextWorkID = w.ID + 1
	}
	s.works = append(s.works, w)
	return w.ID, nil
}

// InsertChapter inserts a chapter
func (s *Memory) InsertChapter(_ context.Context, c Chapter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chapters = append(s.chapters, c)
	return nil
}

// InsertSection inserts a section
func (s *Memory) InsertSection(_ context.Context, sec Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections = append(s.sections, sec)
	return nil
}

// InsertPassage inserts one passage
func (s *Memory) InsertPassage(_ context.Context, p Passage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passages = append(s.passages, p)
	return nil
}

// InsertPassages inserts a batch of passages
func (s *Memory) InsertPassages(_ context.Context, batch []Passage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passages = append(s.passages, batch...)
	return nil
}

// InsertTerm inserts a glossary term
func (s *Memory) InsertTerm(_ context.Context, t Term) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terms = append(s.terms, t)
	return nil
}

// InsertFootnote inserts a footnote
func (s *Memory) InsertFootnote(_ context.Context, f Footnote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID == 0 {
		f.ID = s.nextNoteID
	}
	if f.ID >= s.nextNoteID {
		s.nextNoteID = f.ID + 1
	}
	s.footnotes = append(s.footnotes, f)
	return nil
}

// InsertPart inserts a part
func (s *Memory) InsertPart(_ context.Context, p Part) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parts = append(s.parts, p)
	return nil
}

// Close is a no-op for the in-memory store
func (s *Memory) Close() error {
	return nil
}
