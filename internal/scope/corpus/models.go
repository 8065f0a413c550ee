// Package corpus defines the text corpus data model and the storage
// interface consumed by the search engine and the link index builder.
package corpus

// Work is one literary text (a book or pamphlet) being indexed.
type Work struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Year        string `json:"year,omitempty"`
	Description string `json:"description,omitempty"`
}

// Chapter belongs to exactly one Work, ordered by ChapterNumber.
type Chapter struct {
	ID            int    `json:"id"`
	WorkID        int    `json:"work_id"`
	ChapterNumber int    `json:"chapter_number"`
	Title         string `json:"title"`
}

// Section is an optional subdivision of a Chapter.
type Section struct {
	ID            string `json:"id"` // e.g. "1.ch3.sec2"
	WorkID        int    `json:"work_id"`
	ChapterID     int    `json:"chapter"`
	SectionNumber int    `json:"section"`
	Title         string `json:"title"`
}

// Passage is the atomic unit of searchable text, one paragraph.
// IDs are stable and referenced by links; renumbering must go through
// Store.RenumberPassage so referencing links move with the passage.
type Passage struct {
	ID            string `json:"id"`
	WorkID        int    `json:"work_id"`
	ChapterID     int    `json:"chapter"`
	SectionNumber *int   `json:"section,omitempty"`
	Paragraph     int    `json:"paragraph"`
	Text          string `json:"text"`
	Translation   string `json:"translation,omitempty"`
}

// Term is a glossary entry scoped to one Work. Term is the canonical
// surface form used for matching. Aliases are stored but never expanded
// during matching.
type Term struct {
	ID         string `json:"id"`
	WorkID     int    `json:"work_id"`
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Tags       string `json:"tags"`
	Aliases    string `json:"aliases,omitempty"`
}

// TermPassageLink asserts that a term occurs in a passage under the
// matching rule that was in effect when the index was built. At most one
// link exists per (TermID, PassageID) pair. TextSnippet is precomputed at
// build time so listing a term's passages needs no rescan.
type TermPassageLink struct {
	TermID      string `json:"term_id"`
	PassageID   string `json:"passage_id"`
	WorkID      int    `json:"work_id"`
	TextSnippet string `json:"text_snippet"`
}

// LinkView is a link row joined with its passage and the resolved chapter
// and section titles, as served by the per-term passage listing.
type LinkView struct {
	PassageID     string  `json:"id"`
	ChapterID     int     `json:"chapter"`
	SectionNumber *int    `json:"section,omitempty"`
	Paragraph     int     `json:"paragraph"`
	TextSnippet   string  `json:"text_snippet"`
	ChapterTitle  string  `json:"chapter_title"`
	SectionTitle  *string `json:"section_title,omitempty"`
	WorkID        int     `json:"work_id"`
}

// Part groups a contiguous chapter range for the table of contents.
type Part struct {
	ID           int    `json:"id"`
	WorkID       int    `json:"work_id"`
	Number       int    `json:"number"`
	Title        string `json:"title"`
	StartChapter int    `json:"start_chapter"`
	EndChapter   int    `json:"end_chapter"`
}

// Footnote is an editorial note attached to a passage.
type Footnote struct {
	ID             int    `json:"id"`
	PassageID      string `json:"passage_id"`
	FootnoteNumber int    `json:"footnote_number"`
	Text           string `json:"text"`
}
