package repository

import (
	"context"
	"database/sql"
	"io"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	_ "github.com/lib/pq"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"igdigest/pkg/config"
	"igdigest/pkg/errors"
	"igdigest/pkg/logger"
	"igdigest/pkg/models"
)

// objectPrefix namespaces media blobs inside the bucket so the bucket can
// be shared with other data.
const objectPrefix = "instagram_content/"

const createTableStmt = `
CREATE TABLE IF NOT EXISTS instagram_data (
	id SERIAL PRIMARY KEY,
	username TEXT,
	caption TEXT,
	url TEXT,
	timestamp TIMESTAMPTZ,
	video_url TEXT,
	display_url TEXT
)`

// CloudRepository persists posts in Postgres and media blobs in a Google
// Cloud Storage bucket.
type CloudRepository struct {
	db     *sql.DB
	gcs    *storage.Client
	bucket string
	logger logger.Logger
}

func NewCloudRepository(ctx context.Context, cfg *config.StorageConfig, log logger.Logger) (*CloudRepository, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "cloud backend requires a database URL")
	}
	if cfg.Bucket == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "cloud backend requires a bucket name")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to open database: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to reach database: %v", err)
	}
	if _, err := db.ExecContext(ctx, createTableStmt); err != nil {
		db.Close()
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to ensure schema: %v", err)
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	gcs, err := storage.NewClient(ctx, opts...)
	if err != nil {
		db.Close()
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to create storage client: %v", err)
	}

	log.InfoWithFields("cloud repository ready", map[string]interface{}{
		"bucket": cfg.Bucket,
	})

	return &CloudRepository{
		db:     db,
		gcs:    gcs,
		bucket: cfg.Bucket,
		logger: log,
	}, nil
}

func (r *CloudRepository) ReplaceAll(ctx context.Context, records []models.PostRecord) ([]models.PostRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "TRUNCATE instagram_data RESTART IDENTITY"); err != nil {
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to clear posts: %v", err)
	}

	const insertStmt = `
		INSERT INTO instagram_data (username, caption, url, timestamp, video_url, display_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	assigned := make([]models.PostRecord, len(records))
	for i, rec := range records {
		var ts interface{}
		if !rec.Timestamp.IsZero() {
			ts = rec.Timestamp
		}
		row := tx.QueryRowContext(ctx, insertStmt,
			rec.Username, rec.Caption, rec.URL, ts, rec.VideoURL, rec.DisplayURL)
		if err := row.Scan(&rec.ID); err != nil {
			return nil, errors.Newf(errors.ErrorTypeStorage, "failed to insert post: %v", err)
		}
		assigned[i] = rec
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to commit posts: %v", err)
	}

	r.logger.DebugWithFields("replaced post snapshot", map[string]interface{}{
		"count": len(assigned),
	})

	return assigned, nil
}

func (r *CloudRepository) ListAll(ctx context.Context) ([]models.PostRecord, error) {
	const selectStmt = `
		SELECT id, username, caption, url, timestamp, video_url, display_url
		FROM instagram_data
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, selectStmt)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to query posts: %v", err)
	}
	defer rows.Close()

	var records []models.PostRecord
	for rows.Next() {
		var (
			rec      models.PostRecord
			username sql.NullString
			caption  sql.NullString
			url      sql.NullString
			ts       sql.NullTime
			videoURL sql.NullString
			display  sql.NullString
		)
		if err := rows.Scan(&rec.ID, &username, &caption, &url, &ts, &videoURL, &display); err != nil {
			return nil, errors.Newf(errors.ErrorTypeStorage, "failed to scan post: %v", err)
		}
		rec.Username = username.String
		rec.Caption = caption.String
		rec.URL = url.String
		if ts.Valid {
			rec.Timestamp = ts.Time.UTC()
		} else {
			rec.Timestamp = time.Time{}
		}
		rec.VideoURL = videoURL.String
		rec.DisplayURL = display.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to read posts: %v", err)
	}
	return records, nil
}

func (r *CloudRepository) PutBlob(ctx context.Context, key string, data []byte, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	w := r.gcs.Bucket(r.bucket).Object(objectPrefix + key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return errors.Newf(errors.ErrorTypeStorage, "failed to upload blob %s: %v", key, err)
	}
	if err := w.Close(); err != nil {
		return errors.Newf(errors.ErrorTypeStorage, "failed to finish upload of blob %s: %v", key, err)
	}
	return nil
}

func (r *CloudRepository) GetBlob(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	reader, err := r.gcs.Bucket(r.bucket).Object(objectPrefix + key).NewReader(ctx)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to open blob %s: %v", key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeStorage, "failed to read blob %s: %v", key, err)
	}
	return data, nil
}

func (r *CloudRepository) ListBlobs(ctx context.Context, prefix string) ([]models.BlobRef, error) {
	it := r.gcs.Bucket(r.bucket).Objects(ctx, &storage.Query{Prefix: objectPrefix + prefix})

	var refs []models.BlobRef
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Newf(errors.ErrorTypeStorage, "failed to list blobs: %v", err)
		}
		refs = append(refs, models.BlobRef{
			Key:  strings.TrimPrefix(attrs.Name, objectPrefix),
			Size: attrs.Size,
		})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Key < refs[j].Key })
	return refs, nil
}

func (r *CloudRepository) ClearBlobs(ctx context.Context, prefix string) error {
	bucket := r.gcs.Bucket(r.bucket)
	it := bucket.Objects(ctx, &storage.Query{Prefix: objectPrefix + prefix})

	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return errors.Newf(errors.ErrorTypeStorage, "failed to list blobs: %v", err)
		}
		if err := bucket.Object(attrs.Name).Delete(ctx); err != nil {
			return errors.Newf(errors.ErrorTypeStorage, "failed to delete blob %s: %v", attrs.Name, err)
		}
	}
	return nil
}

func (r *CloudRepository) Close() error {
	var firstErr error
	if err := r.db.Close(); err != nil {
		firstErr = err
	}
	if err := r.gcs.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
