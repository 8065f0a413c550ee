// Package main implements the Concord maintenance CLI: corpus seeding,
// link index builds and passage renumbering.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/concordlabs/concord/internal/ingest"
	"github.com/concordlabs/concord/internal/libs/config"
	"github.com/concordlabs/concord/internal/libs/obs"
	"github.com/concordlabs/concord/internal/scope/corpus"
	"github.com/concordlabs/concord/internal/scope/links"
	"github.com/concordlabs/concord/internal/scope/search"
)

func main() {
	root := &cobra.Command{Use: "concord", Short: "Concord corpus maintenance CLI"}
	root.AddCommand(rebuildCmd(), updateCmd(), renumberCmd(), seedCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore connects to Postgres and ensures the schema exists
func openStore(ctx context.Context) (*corpus.Postgres, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	obs.InitLogger(cfg.LogLevel)

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	store := corpus.NewPostgres(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return store, cfg, nil
}

func newBuilder(store corpus.Store, cfg *config.Config) *links.Builder {
	matcher := search.NewMatcher(search.NewScorer(), search.Thresholds{
		TermFuzzy:    cfg.TermFuzzyThreshold,
		PassageFuzzy: cfg.PassageFuzzyThreshold,
		LinkFuzzy:    cfg.LinkFuzzyThreshold,
	})
	return links.NewBuilder(store, matcher, obs.Logger("links"))
}

func rebuildCmd() *cobra.Command {
	var workID int
	var exact bool
	cmd := &cobra.Command{
		Use:   "rebuild-links",
		Short: "Rebuild the term-passage link index from scratch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, cfg, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var scope *int
			if workID > 0 {
				scope = &workID
			}
			created, err := newBuilder(store, cfg).Rebuild(ctx, scope, exact)
			if err != nil {
				return err
			}
			fmt.Printf("created %d links\n", created)
			return nil
		},
	}
	cmd.Flags().IntVar(&workID, "work", 0, "limit the rebuild to one work id")
	cmd.Flags().BoolVar(&exact, "exact", false, "use substring matching instead of the fuzzy link predicate")
	return cmd
}

func updateCmd() *cobra.Command {
	var workID int
	cmd := &cobra.Command{
		Use:   "update-links",
		Short: "Add whole-word links for a newly onboarded work",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if workID <= 0 {
				return fmt.Errorf("--work is required")
			}
			ctx := cmd.Context()
			store, cfg, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			added, err := newBuilder(store, cfg).Update(ctx, workID)
			if err != nil {
				return err
			}
			fmt.Printf("added %d links\n", added)
			return nil
		},
	}
	cmd.Flags().IntVar(&workID, "work", 0, "work id to scan (required)")
	return cmd
}

func renumberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "renumber",
		Short: "Assign sequential ids to all passages, moving links with them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			renumbered, total, err := renumberAll(ctx, store)
			if err != nil {
				return err
			}
			fmt.Printf("renumbered %d of %d passages\n", renumbered, total)
			return nil
		},
	}
}

// renumberAll assigns sequential ids to all passages in corpus order.
// Renames go through temporary ids first; a target id still held by a
// later passage would otherwise collide mid-run.
func renumberAll(ctx context.Context, store corpus.Store) (renumbered, total int, err error) {
	passages, err := store.GetPassages(ctx, corpus.PassageFilter{})
	if err != nil {
		return 0, 0, err
	}
	type rename struct{ tmp, final string }
	var pending []rename
	for i, p := range passages {
		newID := strconv.Itoa(i + 1)
		if p.ID == newID {
			continue
		}
		tmp := "renumber:" + newID
		if err := store.RenumberPassage(ctx, p.ID, tmp); err != nil {
			return len(pending), len(passages), fmt.Errorf("failed to renumber passage %s: %w", p.ID, err)
		}
		pending = append(pending, rename{tmp: tmp, final: newID})
	}
	for _, r := range pending {
		if err := store.RenumberPassage(ctx, r.tmp, r.final); err != nil {
			return len(pending), len(passages), fmt.Errorf("failed to renumber passage %s: %w", r.final, err)
		}
	}
	return len(pending), len(passages), nil
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Load a work seed file into the corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			store, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open seed file: %w", err)
			}
			defer func() { _ = f.Close() }()

			stats, err := ingest.NewLoader(store, obs.Logger("ingest")).Load(ctx, f)
			if err != nil {
				return err
			}
			fmt.Printf("seeded work %d: %d chapters, %d sections, %d passages, %d terms, %d footnotes, %d parts\n",
				stats.WorkID, stats.Chapters, stats.Sections, stats.Passages, stats.Terms, stats.Footnotes, stats.Parts)
			return nil
		},
	}
}
