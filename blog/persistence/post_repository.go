package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/chilisites/postsapi/blog/domain"
	"github.com/chilisites/postsapi/shared/db"
	"github.com/chilisites/postsapi/shared/status"
)

var _ domain.PostRepository = (*SQLPostRepository)(nil)

const postsTable = "posts"

var postColumns = []string{"id", "title", "slug", "date", "cover_reference", "external_reference"}

// SQLPostRepository implements domain.PostRepository on SQLite or PostgreSQL.
type SQLPostRepository struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

// NewPostRepository creates a repository over sqlDB, binding parameters in
// the style of dialect.
func NewPostRepository(sqlDB *sql.DB, dialect db.Dialect) *SQLPostRepository {
	return &SQLPostRepository{
		db: sqlDB,
		sb: dialect.StatementBuilder(),
	}
}

// ListPosts returns posts ordered by date, then id, in the requested
// direction. Dates are compared as stored text.
func (r *SQLPostRepository) ListPosts(ctx context.Context, opts domain.ListOptions) ([]*domain.Post, error) {
	dir := "DESC"
	if opts.Order == domain.OrderAsc {
		dir = "ASC"
	}

	q := r.sb.Select(postColumns...).
		From(postsTable).
		OrderBy("date "+dir, "id "+dir)
	if opts.Limit > 0 {
		q = q.Limit(uint64(opts.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := db.GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0)
	for rows.Next() {
		var row postRow
		if err := row.scan(rows); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, row.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

// GetPost retrieves a single post by exact slug.
func (r *SQLPostRepository) GetPost(ctx context.Context, slug string) (*domain.Post, error) {
	if slug == "" {
		return nil, status.Wrap(domain.ErrNotFound, errors.New("empty slug"))
	}

	query, args, err := r.sb.Select(postColumns...).
		From(postsTable).
		Where(sq.Eq{"slug": slug}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get query: %w", err)
	}

	var row postRow
	err = row.scan(db.GetExecutor(ctx, r.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return row.toDomain(), nil
}

// CreatePost inserts p in its own transaction and sets the assigned ID.
func (r *SQLPostRepository) CreatePost(ctx context.Context, p *domain.Post) error {
	if p == nil {
		return fmt.Errorf("post cannot be nil")
	}

	query, args, err := r.sb.Insert(postsTable).
		Columns("title", "slug", "date", "cover_reference", "external_reference").
		Values(p.Title, p.Slug, p.Date, p.CoverReference, nullString(p.ExternalReference)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		var id int64
		err := db.GetExecutor(txCtx, r.db).QueryRowContext(txCtx, query, args...).Scan(&id)
		if db.IsUniqueViolation(err) {
			return status.Wrap(domain.ErrConflict, fmt.Errorf("slug %q", p.Slug))
		}
		if err != nil {
			return fmt.Errorf("failed to insert post: %w", err)
		}

		p.ID = id
		return nil
	})
}

// UpdatePost applies the non-nil fields of upd to the post with the given slug
// and returns the stored result.
func (r *SQLPostRepository) UpdatePost(ctx context.Context, slug string, upd domain.PostUpdate) (*domain.Post, error) {
	var updated *domain.Post

	err := db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		current, err := r.GetPost(txCtx, slug)
		if err != nil {
			return err
		}

		if upd.IsEmpty() {
			updated = current
			return nil
		}

		set := map[string]any{}
		if upd.Title != nil {
			set["title"] = *upd.Title
			current.Title = *upd.Title
		}
		if upd.Date != nil {
			set["date"] = *upd.Date
			current.Date = *upd.Date
		}
		if upd.CoverReference != nil {
			set["cover_reference"] = *upd.CoverReference
			current.CoverReference = *upd.CoverReference
		}

		query, args, err := r.sb.Update(postsTable).
			SetMap(set).
			Where(sq.Eq{"id": current.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update query: %w", err)
		}

		if _, err := db.GetExecutor(txCtx, r.db).ExecContext(txCtx, query, args...); err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeletePost removes the post permanently.
func (r *SQLPostRepository) DeletePost(ctx context.Context, slug string) error {
	query, args, err := r.sb.Delete(postsTable).
		Where(sq.Eq{"slug": slug}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	res, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read deleted rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// postRow is a private struct used to scan database rows
type postRow struct {
	ID                int64
	Title             string
	Slug              string
	Date              string
	CoverReference    string
	ExternalReference sql.NullString
}

func (pr *postRow) scan(s rowScanner) error {
	return s.Scan(
		&pr.ID,
		&pr.Title,
		&pr.Slug,
		&pr.Date,
		&pr.CoverReference,
		&pr.ExternalReference,
	)
}

func (pr *postRow) toDomain() *domain.Post {
	post := &domain.Post{
		ID:             pr.ID,
		Title:          pr.Title,
		Slug:           pr.Slug,
		Date:           pr.Date,
		CoverReference: pr.CoverReference,
	}

	if pr.ExternalReference.Valid {
		ref := pr.ExternalReference.String
		post.ExternalReference = &ref
	}

	return post
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
