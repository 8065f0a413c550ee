package corpus

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements Store using PostgreSQL
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres creates a new PostgreSQL-backed corpus store
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the corpus tables if they do not exist.
// The link table FK on passages is deferrable so RenumberPassage can
// retarget links before the passage id itself changes.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS works (
			id SERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT NOT NULL DEFAULT '',
			year TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS chapters (
			id INTEGER PRIMARY KEY,
			work_id INTEGER NOT NULL REFERENCES works(id),
			chapter_number INTEGER NOT NULL,
			title TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS sections (
			id TEXT PRIMARY KEY,
			work_id INTEGER NOT NULL REFERENCES works(id),
			chapter INTEGER NOT NULL,
			section INTEGER NOT NULL,
			title TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS passages (
			id TEXT PRIMARY KEY,
			work_id INTEGER NOT NULL REFERENCES works(id),
			chapter INTEGER NOT NULL,
			section INTEGER,
			paragraph INTEGER NOT NULL,
			text TEXT NOT NULL,
			translation TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS terms (
			id TEXT PRIMARY KEY,
			work_id INTEGER NOT NULL REFERENCES works(id),
			term TEXT NOT NULL,
			definition TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '',
			aliases TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS term_passage_links (
			term_id TEXT NOT NULL REFERENCES terms(id),
			passage_id TEXT NOT NULL REFERENCES passages(id) DEFERRABLE INITIALLY DEFERRED,
			work_id INTEGER NOT NULL,
			text_snippet TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (term_id, passage_id)
		);
		CREATE TABLE IF NOT EXISTS parts (
			id SERIAL PRIMARY KEY,
			work_id INTEGER NOT NULL REFERENCES works(id),
			number INTEGER NOT NULL,
			title TEXT NOT NULL,
			start_chapter INTEGER NOT NULL,
			end_chapter INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS footnotes (
			id SERIAL PRIMARY KEY,
			passage_id TEXT NOT NULL,
			footnote_number INTEGER NOT NULL,
			text TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// GetWorks returns all works
func (s *Postgres) GetWorks(ctx context.Context) ([]Work, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, title, author, year, description
		FROM works
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list works: %w", err)
	}
	defer rows.Close()

	var works []Work
	for rows.Next() {
		var w Work
		if err := rows.Scan(&w.ID, &w.Title, &w.Author, &w.Year, &w.Description); err != nil {
			return nil, fmt.Errorf("failed to scan work: %w", err)
		}
		works = append(works, w)
	}
	return works, rows.Err()
}

// GetWork returns one work by id
func (s *Postgres) GetWork(ctx context.Context, id int) (*Work, error) {
	var w Work
	err := s.db.QueryRow(ctx, `
		SELECT id, title, author, year, description
		FROM works
		WHERE id = $1
	`, id).Scan(&w.ID, &w.Title, &w.Author, &w.Year, &w.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get work: %w", err)
	}
	return &w, nil
}

// GetTerms returns glossary terms, optionally scoped to a work
func (s *Postgres) GetTerms(ctx context.Context, workID *int) ([]Term, error) {
	query := `
		SELECT id, work_id, term, definition, tags, aliases
		FROM terms
	`
	args := []interface{}{}
	if workID != nil {
		query += ` WHERE work_id = $1`
		args = append(args, *workID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list terms: %w", err)
	}
	defer rows.Close()

	var terms []Term
	for rows.Next() {
		var t Term
		if err := rows.Scan(&t.ID, &t.WorkID, &t.Term, &t.Definition, &t.Tags, &t.Aliases); err != nil {
			return nil, fmt.Errorf("failed to scan term: %w", err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// GetTerm returns one term by id
func (s *Postgres) GetTerm(ctx context.Context, id string) (*Term, error) {
	var t Term
	err := s.db.QueryRow(ctx, `
		SELECT id, work_id, term, definition, tags, aliases
		FROM terms
		WHERE id = $1
	`, id).Scan(&t.ID, &t.WorkID, &t.Term, &t.Definition, &t.Tags, &t.Aliases)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get term: %w", err)
	}
	return &t, nil
}

// GetChapters returns chapters, optionally scoped to a work
func (s *Postgres) GetChapters(ctx context.Context, workID *int) ([]Chapter, error) {
	query := `
		SELECT id, work_id, chapter_number, title
		FROM chapters
	`
	args := []interface{}{}
	if workID != nil {
		query += ` WHERE work_id = $1`
		args = append(args, *workID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	defer rows.Close()

	var chapters []Chapter
	for rows.Next() {
		var c Chapter
		if err := rows.Scan(&c.ID, &c.WorkID, &c.ChapterNumber, &c.Title); err != nil {
			return nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		chapters = append(chapters, c)
	}
	return chapters, rows.Err()
}

// GetChapter returns one chapter by id
func (s *Postgres) GetChapter(ctx context.Context, id int) (*Chapter, error) {
	var c Chapter
	err := s.db.QueryRow(ctx, `
		SELECT id, work_id, chapter_number, title
		FROM chapters
		WHERE id = $1
	`, id).Scan(&c.ID, &c.WorkID, &c.ChapterNumber, &c.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}
	return &c, nil
}

// GetSections returns sections, optionally scoped to a work and chapter
func (s *Postgres) GetSections(ctx context.Context, workID, chapterID *int) ([]Section, error) {
	query := `
		SELECT id, work_id, chapter, section, title
		FROM sections
		WHERE 1=1
	`
	args := []interface{}{}
	if workID != nil {
		args = append(args, *workID)
		query += fmt.Sprintf(" AND work_id = $%d", len(args))
	}
	if chapterID != nil {
		args = append(args, *chapterID)
		query += fmt.Sprintf(" AND chapter = $%d", len(args))
	}
	query += ` ORDER BY chapter, section`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer rows.Close()

	var sections []Section
	for rows.Next() {
		var sec Section
		if err := rows.Scan(&sec.ID, &sec.WorkID, &sec.ChapterID, &sec.SectionNumber, &sec.Title); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

// GetSection returns the section with the given number within a chapter
func (s *Postgres) GetSection(ctx context.Context, chapterID, sectionNumber int) (*Section, error) {
	var sec Section
	err := s.db.QueryRow(ctx, `
		SELECT id, work_id, chapter, section, title
		FROM sections
		WHERE chapter = $1 AND section = $2
	`, chapterID, sectionNumber).Scan(&sec.ID, &sec.WorkID, &sec.ChapterID, &sec.SectionNumber, &sec.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get section: %w", err)
	}
	return &sec, nil
}

// GetPassages returns passages matching the filter in corpus order
func (s *Postgres) GetPassages(ctx context.Context, f PassageFilter) ([]Passage, error) {
	query := `
		SELECT id, work_id, chapter, section, paragraph, text, translation
		FROM passages
		WHERE 1=1
	`
	args := []interface{}{}
	if f.WorkID != nil {
		args = append(args, *f.WorkID)
		query += fmt.Sprintf(" AND work_id = $%d", len(args))
	}
	if f.ChapterID != nil {
		args = append(args, *f.ChapterID)
		query += fmt.Sprintf(" AND chapter = $%d", len(args))
	}
	if f.SectionNumber != nil {
		args = append(args, *f.SectionNumber)
		query += fmt.Sprintf(" AND section = $%d", len(args))
	}
	query += ` ORDER BY work_id, chapter, paragraph`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list passages: %w", err)
	}
	defer rows.Close()

	var passages []Passage
	for rows.Next() {
		var p Passage
		if err := rows.Scan(&p.ID, &p.WorkID, &p.ChapterID, &p.SectionNumber, &p.Paragraph, &p.Text, &p.Translation); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}
		passages = append(passages, p)
	}
	return passages, rows.Err()
}

// GetPassage returns one passage by id
func (s *Postgres) GetPassage(ctx context.Context, id string) (*Passage, error) {
	var p Passage
	err := s.db.QueryRow(ctx, `
		SELECT id, work_id, chapter, section, paragraph, text, translation
		FROM passages
		WHERE id = $1
	`, id).Scan(&p.ID, &p.WorkID, &p.ChapterID, &p.SectionNumber, &p.Paragraph, &p.Text, &p.Translation)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get passage: %w", err)
	}
	return &p, nil
}

// RenumberPassage changes a passage id. Links are retargeted in the same
// transaction before the passage row itself is updated, so no link ever
// points at a missing passage.
func (s *Postgres) RenumberPassage(ctx context.Context, oldID, newID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		UPDATE term_passage_links SET passage_id = $2 WHERE passage_id = $1
	`, oldID, newID); err != nil {
		return fmt.Errorf("failed to retarget links: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE footnotes SET passage_id = $2 WHERE passage_id = $1
	`, oldID, newID); err != nil {
		return fmt.Errorf("failed to retarget footnotes: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE passages SET id = $2 WHERE id = $1
	`, oldID, newID)
	if err != nil {
		return fmt.Errorf("failed to renumber passage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit renumbering: %w", err)
	}
	return nil
}

// GetParts returns parts, optionally scoped to a work
func (s *Postgres) GetParts(ctx context.Context, workID *int) ([]Part, error) {
	query := `
		SELECT id, work_id, number, title, start_chapter, end_chapter
		FROM parts
	`
	args := []interface{}{}
	if workID != nil {
		query += ` WHERE work_id = $1`
		args = append(args, *workID)
	}
	query += ` ORDER BY number`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list parts: %w", err)
	}
	defer rows.Close()

	var parts []Part
	for rows.Next() {
		var p Part
		if err := rows.Scan(&p.ID, &p.WorkID, &p.Number, &p.Title, &p.StartChapter, &p.EndChapter); err != nil {
			return nil, fmt.Errorf("failed to scan part: %w", err)
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// GetFootnotes returns a passage's footnotes ordered by footnote number
func (s *Postgres) GetFootnotes(ctx context.Context, passageID string) ([]Footnote, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, passage_id, footnote_number, text
		FROM footnotes
		WHERE passage_id = $1
		ORDER BY footnote_number
	`, passageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list footnotes: %w", err)
	}
	defer rows.Close()

	var notes []Footnote
	for rows.Next() {
		var f Footnote
		if err := rows.Scan(&f.ID, &f.PassageID, &f.FootnoteNumber, &f.Text); err != nil {
			return nil, fmt.Errorf("failed to scan footnote: %w", err)
		}
		notes = append(notes, f)
	}
	return notes, rows.Err()
}

// DeleteLinks removes link rows, optionally scoped to a work
func (s *Postgres) DeleteLinks(ctx context.Context, workID *int) (int64, error) {
	query := `DELETE FROM term_passage_links`
	args := []interface{}{}
	if workID != nil {
		query += ` WHERE work_id = $1`
		args = append(args, *workID)
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete links: %w", err)
	}
	return tag.RowsAffected(), nil
}

// InsertLink inserts one link row
func (s *Postgres) InsertLink(ctx context.Context, link TermPassageLink) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO term_passage_links (term_id, passage_id, work_id, text_snippet)
		VALUES ($1, $2, $3, $4)
	`, link.TermID, link.PassageID, link.WorkID, link.TextSnippet)
	var pgErr *pgconn.PgError
	// 23505 unique_violation, 23503 foreign_key_violation
	if errors.As(err, &pgErr) && (pgErr.Code == "23505" || pgErr.Code == "23503") {
		return fmt.Errorf("%w: link (%s, %s)", ErrIntegrity, link.TermID, link.PassageID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert link: %w", err)
	}
	return nil
}

// LinkExists reports whether a (term, passage) link row exists
func (s *Postgres) LinkExists(ctx context.Context, termID, passageID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM term_passage_links WHERE term_id = $1 AND passage_id = $2
		)
	`, termID, passageID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check link: %w", err)
	}
	return exists, nil
}

// ReplaceLinks swaps the link set for the given scope in one transaction.
// A failed rebuild leaves the previous index intact.
func (s *Postgres) ReplaceLinks(ctx context.Context, workID *int, links []TermPassageLink) (int, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	delQuery := `DELETE FROM term_passage_links`
	delArgs := []interface{}{}
	if workID != nil {
		delQuery += ` WHERE work_id = $1`
		delArgs = append(delArgs, *workID)
	}
	if _, err := tx.Exec(ctx, delQuery, delArgs...); err != nil {
		return 0, fmt.Errorf("failed to clear links: %w", err)
	}

	batch := &pgx.Batch{}
	for _, link := range links {
		batch.Queue(`
			INSERT INTO term_passage_links (term_id, passage_id, work_id, text_snippet)
			VALUES ($1, $2, $3, $4)
		`, link.TermID, link.PassageID, link.WorkID, link.TextSnippet)
	}
	br := tx.SendBatch(ctx, batch)
	for range links {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return 0, fmt.Errorf("failed to insert link batch: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("failed to close link batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit link rebuild: %w", err)
	}
	return len(links), nil
}

// GetLinks returns a page of a term's links joined with passage position
// and chapter/section titles
func (s *Postgres) GetLinks(ctx context.Context, termID string, workID *int, offset, limit int) ([]LinkView, error) {
	query := `
		SELECT p.id, p.chapter, p.section, p.paragraph, l.text_snippet,
		       c.title, sec.title, l.work_id
		FROM term_passage_links l
		JOIN passages p ON p.id = l.passage_id
		JOIN chapters c ON c.id = p.chapter
		LEFT JOIN sections sec ON sec.chapter = p.chapter AND sec.section = p.section
		WHERE l.term_id = $1
	`
	args := []interface{}{termID}
	if workID != nil {
		args = append(args, *workID)
		query += fmt.Sprintf(" AND l.work_id = $%d", len(args))
	}
	args = append(args, offset)
	query += fmt.Sprintf(" ORDER BY p.work_id, p.chapter, p.paragraph OFFSET $%d", len(args))
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var views []LinkView
	for rows.Next() {
		var v LinkView
		if err := rows.Scan(&v.PassageID, &v.ChapterID, &v.SectionNumber, &v.Paragraph,
			&v.TextSnippet, &v.ChapterTitle, &v.SectionTitle, &v.WorkID); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// CountLinks returns the number of links for a term
func (s *Postgres) CountLinks(ctx context.Context, termID string, workID *int) (int, error) {
	query := `SELECT COUNT(*) FROM term_passage_links WHERE term_id = $1`
	args := []interface{}{termID}
	if workID != nil {
		args = append(args, *workID)
		query += fmt.Sprintf(" AND work_id = $%d", len(args))
	}
	var count int
	if err := s.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}
	return count, nil
}

// InsertWork inserts a work and returns its assigned id
func (s *Postgres) InsertWork(ctx context.Context, w Work) (int, error) {
	var id int
	err := s.db.QueryRow(ctx, `
		INSERT INTO works (title, author, year, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, w.Title, w.Author, w.Year, w.Description).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert work: %w", err)
	}
	return id, nil
}

// InsertChapter inserts a chapter
func (s *Postgres) InsertChapter(ctx context.Context, c Chapter) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO chapters (id, work_id, chapter_number, title)
		VALUES ($1, $2, $3, $4)
	`, c.ID, c.WorkID, c.ChapterNumber, c.Title)
	if err != nil {
		return fmt.Errorf("failed to insert chapter: %w", err)
	}
	return nil
}

// InsertSection inserts a section
func (s *Postgres) InsertSection(ctx context.Context, sec Section) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO sections (id, work_id, chapter, section, title)
		VALUES ($1, $2, $3, $4, $5)
	`, sec.ID, sec.WorkID, sec.ChapterID, sec.SectionNumber, sec.Title)
	if err != nil {
		return fmt.Errorf("failed to insert section: %w", err)
	}
	return nil
}

// InsertPassage inserts one passage
func (s *Postgres) InsertPassage(ctx context.Context, p Passage) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO passages (id, work_id, chapter, section, paragraph, text, translation)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.WorkID, p.ChapterID, p.SectionNumber, p.Paragraph, p.Text, p.Translation)
	if err != nil {
		return fmt.Errorf("failed to insert passage: %w", err)
	}
	return nil
}

// InsertPassages inserts a batch of passages in one round trip
func (s *Postgres) InsertPassages(ctx context.Context, passages []Passage) error {
	batch := &pgx.Batch{}
	for _, p := range passages {
		batch.Queue(`
			INSERT INTO passages (id, work_id, chapter, section, paragraph, text, translation)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, p.ID, p.WorkID, p.ChapterID, p.SectionNumber, p.Paragraph, p.Text, p.Translation)
	}
	br := s.db.SendBatch(ctx, batch)
	for range passages {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to insert passage batch: %w", err)
		}
	}
	return br.Close()
}

// InsertTerm inserts a glossary term
func (s *Postgres) InsertTerm(ctx context.Context, t Term) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO terms (id, work_id, term, definition, tags, aliases)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, t.ID, t.WorkID, t.Term, t.Definition, t.Tags, t.Aliases)
	if err != nil {
		return fmt.Errorf("failed to insert term: %w", err)
	}
	return nil
}

// InsertFootnote inserts a footnote
func (s *Postgres) InsertFootnote(ctx context.Context, f Footnote) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO footnotes (passage_id, footnote_number, text)
		VALUES ($1, $2, $3)
	`, f.PassageID, f.FootnoteNumber, f.Text)
	if err != nil {
		return fmt.Errorf("failed to insert footnote: %w", err)
	}
	return nil
}

// InsertPart inserts a part
func (s *Postgres) InsertPart(ctx context.Context, p Part) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO parts (work_id, number, title, start_chapter, end_chapter)
		VALUES ($1, $2, $3, $4, $5)
	`, p.WorkID, p.Number, p.Title, p.StartChapter, p.EndChapter)
	if err != nil {
		return fmt.Errorf("failed to insert part: %w", err)
	}
	return nil
}

// Close releases the underlying pool
func (s *Postgres) Close() error {
	s.db.Close()
	return nil
}
