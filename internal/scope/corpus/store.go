package corpus

import "context"

// PassageFilter narrows a passage listing. Nil fields are unconstrained.
type PassageFilter struct {
	WorkID        *int
	ChapterID     *int
	SectionNumber *int
}

// Store is the interface for corpus storage.
// Both Postgres and Memory implement this interface. All listing methods
// return rows in corpus insertion order (chapter, then paragraph), which
// pagination relies on.
type Store interface {
	// Works
	GetWorks(ctx context.Context) ([]Work, error)
	GetWork(ctx context.Context, id int) (*Work, error)

	// Terms
	GetTerms(ctx context.Context, workID *int) ([]Term, error)
	GetTerm(ctx context.Context, id string) (*Term, error)

	// Chapters and sections
	GetChapters(ctx context.Context, workID *int) ([]Chapter, error)
	GetChapter(ctx context.Context, id int) (*Chapter, error)
	GetSections(ctx context.Context, workID, chapterID *int) ([]Section, error)
	GetSection(ctx context.Context, chapterID, sectionNumber int) (*Section, error)

	// Passages
	GetPassages(ctx context.Context, f PassageFilter) ([]Passage, error)
	GetPassage(ctx context.Context, id string) (*Passage, error)

	// RenumberPassage changes a passage id and retargets every link row
	// that pointed at the old id, as a single atomic step.
	RenumberPassage(ctx context.Context, oldID, newID string) error

	// Parts and footnotes
	GetParts(ctx context.Context, workID *int) ([]Part, error)
	GetFootnotes(ctx context.Context, passageID string) ([]Footnote, error)

	// Link index rows. Written only by the link index builder.
	DeleteLinks(ctx context.Context, workID *int) (int64, error)
	InsertLink(ctx context.Context, link TermPassageLink) error
	LinkExists(ctx context.Context, termID, passageID string) (bool, error)

	// ReplaceLinks atomically deletes all links in scope and inserts the
	// given set, committing once. Readers observe either the old or the
	// new index, never a partial one.
	ReplaceLinks(ctx context.Context, workID *int, links []TermPassageLink) (int, error)

	GetLinks(ctx context.Context, termID string, workID *int, offset, limit int) ([]LinkView, error)
	CountLinks(ctx context.Context, termID string, workID *int) (int, error)

	// Ingestion writes
	InsertWork(ctx context.Context, w Work) (int, error)
	InsertChapter(ctx context.Context, c Chapter) error
	InsertSection(ctx context.Context, s Section) error
	InsertPassage(ctx context.Context, p Passage) error
	InsertPassages(ctx context.Context, batch []Passage) error
	InsertTerm(ctx context.Context, t Term) error
	InsertFootnote(ctx context.Context, f Footnote) error
	InsertPart(ctx context.Context, p Part) error

	Close() error
}

// Ensure both Postgres and Memory implement Store
var _ Store = (*Postgres)(nil)
var _ Store = (*Memory)(nil)
