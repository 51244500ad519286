package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/iconidentify/learnvid/internal/config"
	"github.com/iconidentify/learnvid/internal/domain"
)

// Timestamps are stored as unix milliseconds so both dialects share one schema.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS videos (
    video_id           TEXT PRIMARY KEY,
    title              TEXT NOT NULL DEFAULT '',
    channel_id         TEXT NOT NULL DEFAULT '',
    channel_name       TEXT NOT NULL DEFAULT '',
    description        TEXT NOT NULL DEFAULT '',
    subject            TEXT NOT NULL DEFAULT '',
    topic              TEXT NOT NULL DEFAULT '',
    class_level        TEXT NOT NULL DEFAULT '',
    validation_status  TEXT NOT NULL DEFAULT 'pending',
    validation_method  TEXT NOT NULL DEFAULT '',
    validation_details TEXT NOT NULL DEFAULT '',
    validated_at       BIGINT,
    created_at         BIGINT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_videos_status_subject ON videos(validation_status, subject)`,
	`CREATE INDEX IF NOT EXISTS idx_videos_class_level ON videos(class_level)`,
}

const videoColumns = `video_id, title, channel_id, channel_name, description, subject, topic,
class_level, validation_status, validation_method, validation_details, validated_at, created_at`

// SQLVideoRepository implements VideoRepository on SQLite or PostgreSQL.
type SQLVideoRepository struct {
	db      *sql.DB
	dialect string
}

// OpenSQLVideoRepository opens the database named by cfg and applies migrations.
func OpenSQLVideoRepository(ctx context.Context, cfg config.StorageConfig) (*SQLVideoRepository, error) {
	var driver string
	switch cfg.Driver {
	case config.DriverSQLite:
		driver = "sqlite"
	case config.DriverPostgres:
		driver = "postgres"
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		// modernc sqlite serialises writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
			}
		}
	}

	repo := &SQLVideoRepository{db: db, dialect: cfg.Driver}
	if err := repo.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return repo, nil
}

// Close closes the database connection.
func (r *SQLVideoRepository) Close() error {
	return r.db.Close()
}

// Ping checks the database connection.
func (r *SQLVideoRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLVideoRepository) migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return err
	}

	var applied int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil {
		return err
	}

	for i := applied; i < len(migrations); i++ {
		if _, err := r.db.ExecContext(ctx, migrations[i]); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
		if _, err := r.db.ExecContext(ctx, r.rebind(`INSERT INTO schema_migrations (version) VALUES (?)`), i); err != nil {
			return fmt.Errorf("record migration %d: %w", i, err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (r *SQLVideoRepository) rebind(query string) string {
	if r.dialect != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

const insertVideoSQL = `INSERT INTO videos (video_id, title, channel_id, channel_name, description,
subject, topic, class_level, validation_status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (video_id) DO NOTHING`

// Add inserts a pending row.
func (r *SQLVideoRepository) Add(ctx context.Context, video *domain.Video) (bool, error) {
	if video == nil || !video.VideoID.Valid() {
		return false, domain.ErrInvalidVideoID
	}
	n, err := r.insert(ctx, r.db, video)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AddBatch inserts pending rows in one transaction, skipping duplicates.
func (r *SQLVideoRepository) AddBatch(ctx context.Context, videos []*domain.Video) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, v := range videos {
		if v == nil || !v.VideoID.Valid() {
			continue
		}
		n, err := r.insert(ctx, tx, v)
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLVideoRepository) insert(ctx context.Context, db execer, video *domain.Video) (int64, error) {
	c := video.Candidate.Normalized()
	created := video.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	res, err := db.ExecContext(ctx, r.rebind(insertVideoSQL),
		c.VideoID.String(), c.Title, c.ChannelID, c.ChannelName, c.Description,
		c.Subject, c.Topic, string(c.ClassLevel), string(domain.ValidationPending), created.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert video %s: %w", c.VideoID, err)
	}
	return res.RowsAffected()
}

// Get retrieves a row by ID.
func (r *SQLVideoRepository) Get(ctx context.Context, id domain.VideoID) (*domain.Video, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(`SELECT `+videoColumns+` FROM videos WHERE video_id = ?`), id.String())
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get video %s: %w", id, err)
	}
	return v, nil
}

// Search returns validated rows matching the criteria, oldest first.
func (r *SQLVideoRepository) Search(ctx context.Context, criteria domain.SearchCriteria) ([]*domain.Video, error) {
	where := []string{"validation_status = ?"}
	args := []any{string(domain.ValidationValid)}

	if criteria.Subject != "" {
		where = append(where, "subject = ?")
		args = append(args, domain.NormalizeTag(criteria.Subject))
	}
	if criteria.ClassLevel != "" {
		where = append(where, "class_level = ?")
		args = append(args, string(criteria.ClassLevel))
	}
	if criteria.Topic != "" {
		where = append(where, `topic LIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(domain.NormalizeTag(criteria.Topic)))
	}
	if criteria.FreeText != "" {
		q := containsPattern(strings.ToLower(strings.TrimSpace(criteria.FreeText)))
		where = append(where, `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`)
		args = append(args, q, q)
	}

	query := `SELECT ` + videoColumns + ` FROM videos WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at, video_id`
	if criteria.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, criteria.Limit)
	}
	return r.query(ctx, query, args...)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s as a literal substring.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// PickRandom returns a uniformly random validated row matching the criteria.
func (r *SQLVideoRepository) PickRandom(ctx context.Context, criteria domain.SearchCriteria) (*domain.Video, error) {
	criteria.Limit = 0
	matches, err := r.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return pickRandom(matches)
}

// ListByStatus returns rows in status, oldest first.
func (r *SQLVideoRepository) ListByStatus(ctx context.Context, status domain.ValidationStatus, limit int) ([]*domain.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE validation_status = ? ORDER BY created_at, video_id`
	args := []any{string(status)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.query(ctx, query, args...)
}

// MarkValidation transitions a row's status. The current status is part of
// the UPDATE predicate so a concurrent change is not overwritten.
func (r *SQLVideoRepository) MarkValidation(ctx context.Context, id domain.VideoID, status domain.ValidationStatus, details domain.ValidationDetails) error {
	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if !current.ValidationStatus.CanTransition(status) {
		return domain.NewVideoError(id, "mark "+string(status), domain.ErrInvalidTransition)
	}

	at := details.At
	if at.IsZero() {
		at = time.Now()
	}
	res, err := r.db.ExecContext(ctx, r.rebind(`UPDATE videos
SET validation_status = ?, validation_method = ?, validation_details = ?, validated_at = ?
WHERE video_id = ? AND validation_status = ?`),
		string(status), string(details.Method), details.String(), at.UnixMilli(),
		id.String(), string(current.ValidationStatus),
	)
	if err != nil {
		return fmt.Errorf("mark video %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewVideoError(id, "mark "+string(status), domain.ErrInvalidTransition)
	}
	return nil
}

// Delete removes a row.
func (r *SQLVideoRepository) Delete(ctx context.Context, id domain.VideoID) error {
	res, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM videos WHERE video_id = ?`), id.String())
	if err != nil {
		return fmt.Errorf("delete video %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrVideoNotFound
	}
	return nil
}

// Stats returns row counts per status.
func (r *SQLVideoRepository) Stats(ctx context.Context) (*domain.StoreStats, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT validation_status, COUNT(*) FROM videos GROUP BY validation_status`)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	defer rows.Close()

	stats := &domain.StoreStats{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats.Total += n
		switch domain.ValidationStatus(status) {
		case domain.ValidationValid:
			stats.Validated = n
		case domain.ValidationPending:
			stats.Pending = n
		case domain.ValidationInvalid:
			stats.Invalid = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	stats.ComputeRate()
	return stats, nil
}

func (r *SQLVideoRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Video, error) {
	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var result []*domain.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVideo(s scanner) (*domain.Video, error) {
	var (
		v           domain.Video
		id, class   string
		status      string
		method      string
		validatedAt sql.NullInt64
		createdAt   int64
	)
	err := s.Scan(&id, &v.Title, &v.ChannelID, &v.ChannelName, &v.Description, &v.Subject, &v.Topic,
		&class, &status, &method, &v.ValidationDetails, &validatedAt, &createdAt)
	if err != nil {
		return nil, err
	}
	v.VideoID = domain.VideoID(id)
	v.ClassLevel = domain.ClassBand(class)
	v.ValidationStatus = domain.ValidationStatus(status)
	v.ValidationMethod = domain.ValidationMethod(method)
	v.CreatedAt = time.UnixMilli(createdAt)
	if validatedAt.Valid {
		at := time.UnixMilli(validatedAt.Int64)
		v.ValidatedAt = &at
	}
	return &v, nil
}
