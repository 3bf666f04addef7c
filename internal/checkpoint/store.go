package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"paperflow/internal/config"
	"paperflow/internal/paper"
)

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the checkpoint database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath connects to the checkpoint database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Get fetches a run by key. A missing run returns (nil, nil).
func (s *Store) Get(ctx context.Context, key string) (*paper.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_key = ?`, key)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// Put writes the full run record, inserting or overwriting the single row
// for its key. The write is the checkpoint taken after every stage; a
// failure here must propagate so the pipeline never records progress it
// did not durably persist.
func (s *Store) Put(ctx context.Context, run *paper.Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if run.Key == "" {
		return errors.New("run key is empty")
	}
	run.UpdatedAt = time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = run.UpdatedAt
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(run_key) DO UPDATE SET
             source_url = excluded.source_url,
             source_kind = excluded.source_kind,
             title = excluded.title,
             authors_json = excluded.authors_json,
             year = excluded.year,
             abstract = excluded.abstract,
             pdf_url = excluded.pdf_url,
             triage_summary = excluded.triage_summary,
             triage_contributions_json = excluded.triage_contributions_json,
             triage_limitations_json = excluded.triage_limitations_json,
             triage_relevance = excluded.triage_relevance,
             triage_action = excluded.triage_action,
             triage_tags_json = excluded.triage_tags_json,
             collection_item_id = excluded.collection_item_id,
             detail_doc_id = excluded.detail_doc_id,
             human_decision = excluded.human_decision,
             human_tags_json = excluded.human_tags_json,
             human_comment = excluded.human_comment,
             deep_overview = excluded.deep_overview,
             deep_innovations_json = excluded.deep_innovations_json,
             deep_directions_json = excluded.deep_directions_json,
             status = excluded.status,
             error_message = excluded.error_message,
             updated_at = excluded.updated_at`,
		run.Key,
		run.SourceURL,
		string(run.SourceKind),
		nullableString(run.Title),
		encodeList(run.Authors),
		run.Year,
		nullableString(run.Abstract),
		nullableString(run.PDFURL),
		nullableString(run.TriageSummary),
		encodeList(run.TriageContributions),
		encodeList(run.TriageLimitations),
		run.TriageRelevance,
		nullableString(run.TriageAction),
		encodeList(run.TriageTags),
		nullableString(run.CollectionItemID),
		nullableString(run.DetailDocID),
		nullableString(run.HumanDecision),
		encodeList(run.HumanTags),
		nullableString(run.HumanComment),
		nullableString(run.DeepReadOverview),
		encodeList(run.DeepReadInnovations),
		encodeList(run.DeepReadDirections),
		string(run.Status),
		nullableString(run.ErrorMessage),
		run.CreatedAt.Format(time.RFC3339Nano),
		run.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put run: %w", err)
	}
	return nil
}

// List returns runs filtered by status set (or all runs when no status is
// provided), oldest first.
func (s *Store) List(ctx context.Context, statuses ...paper.Status) ([]*paper.Run, error) {
	builder := sq.Select(runColumns).From("runs").OrderBy("created_at")
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, status := range statuses {
			values[i] = string(status)
		}
		builder = builder.Where(sq.Eq{"status": values})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*paper.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Remove deletes a run record.
func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_key = ?`, key); err != nil {
		return fmt.Errorf("remove run: %w", err)
	}
	return nil
}

// Clear deletes runs in the provided statuses and reports how many went away.
func (s *Store) Clear(ctx context.Context, statuses ...paper.Status) (int64, error) {
	if len(statuses) == 0 {
		return 0, nil
	}
	values := make([]string, len(statuses))
	for i, status := range statuses {
		values[i] = string(status)
	}
	query, args, err := sq.Delete("runs").Where(sq.Eq{"status": values}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build clear query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of runs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[paper.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM runs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("run stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[paper.Status]int)
	for rows.Next() {
		var status paper.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// HealthSummary aggregates run counts for diagnostic output.
type HealthSummary struct {
	Total     int
	InFlight  int
	Waiting   int
	Completed int
	Failed    int
}

// Health aggregates run state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case paper.StatusWaitingDecision:
			health.Waiting += count
		case paper.StatusCompleted:
			health.Completed += count
		case paper.StatusFailed:
			health.Failed += count
		default:
			health.InFlight += count
		}
	}
	return health, nil
}

// Ping verifies that the database connection is usable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("checkpoint database connection unavailable")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.PingContext(pingCtx)
}
