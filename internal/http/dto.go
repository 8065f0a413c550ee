// Package httpapi provides HTTP handlers and data transfer objects for the Concord API.
package httpapi

import "github.com/concordlabs/concord/internal/scope/corpus"

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status"`
	Works  int    `json:"works"`
}

// PassageSearchResult is one matched passage in a search response
type PassageSearchResult struct {
	ID           string  `json:"id"`
	Chapter      int     `json:"chapter"`
	Section      *int    `json:"section,omitempty"`
	Paragraph    int     `json:"paragraph"`
	Text         string  `json:"text"`
	Translation  string  `json:"translation,omitempty"`
	TextSnippet  string  `json:"text_snippet"`
	ChapterTitle string  `json:"chapter_title,omitempty"`
	SectionTitle *string `json:"section_title,omitempty"`
	WorkID       int     `json:"work_id"`
}

// SearchResponse represents one page of combined search results
type SearchResponse struct {
	Query         string                `json:"query"`
	Terms         []corpus.Term         `json:"terms"`
	Passages      []PassageSearchResult `json:"passages"`
	TotalPassages int                   `json:"total_passages"`
	Page          int                   `json:"page"`
	PageSize      int                   `json:"page_size"`
}

// TermPassagesResponse represents one page of a term's linked passages
type TermPassagesResponse struct {
	TermID   string            `json:"term_id"`
	Passages []corpus.LinkView `json:"passages"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// PassageCountResponse represents a term's link count
type PassageCountResponse struct {
	Count int `json:"count"`
}

// RebuildResponse represents the outcome of a full link index rebuild
type RebuildResponse struct {
	LinksCreated int `json:"links_created"`
}

// UpdateLinksResponse represents the outcome of an incremental link update
type UpdateLinksResponse struct {
	LinksAdded int `json:"links_added"`
}

// PartInfo is the part a chapter belongs to
type PartInfo struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
}

// ChapterNav is prev/next chapter navigation data
type ChapterNav struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	WorkID int    `json:"work_id"`
}

// ChapterDataResponse is the reader payload for one chapter
type ChapterDataResponse struct {
	Title       string           `json:"title"`
	Passages    []corpus.Passage `json:"passages"`
	Sections    []corpus.Section `json:"sections"`
	Terms       []corpus.Term    `json:"terms"`
	Part        *PartInfo        `json:"part,omitempty"`
	PrevChapter *ChapterNav      `json:"prev_chapter,omitempty"`
	NextChapter *ChapterNav      `json:"next_chapter,omitempty"`
}

// SectionMeta is minimal section info for the table of contents
type SectionMeta struct {
	Section int    `json:"section"`
	Title   string `json:"title"`
}

// ChapterTOC is chapter info with its section list
type ChapterTOC struct {
	ID       int           `json:"id"`
	Title    string        `json:"title"`
	Sections []SectionMeta `json:"sections"`
}

// PartTOC groups a part's chapters for the table of contents
type PartTOC struct {
	Number   int          `json:"number"`
	Title    string       `json:"title"`
	Chapters []ChapterTOC `json:"chapters"`
}

// ErrorResponse represents API error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
