package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"postapi/domain"
)

const postColumns = "id, title, created_at, updated_at"

type PostStore struct {
	base
}

func NewPostStore(db *sql.DB, opts ...Option) *PostStore {
	return &PostStore{base: newBase(db, opts)}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (domain.Post, error) {
	p := domain.Post{}
	err := row.Scan(&p.ID, &p.Title, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, domain.ErrNotFound
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, err
}

// List returns page number page (1-based) of posts ordered by id.
// Out of range arguments are clamped rather than rejected; a page past
// the last one is empty and never reaches the database.
func (s *PostStore) List(ctx context.Context, page, perPage int) (domain.PostPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	result := domain.PostPage{Posts: []domain.Post{}, Page: page, PerPage: perPage}

	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts")
	if err := row.Scan(&result.Total); err != nil {
		return result, fmt.Errorf("error counting posts: %w", err)
	}
	if page > result.LastPage() {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+postColumns+" FROM posts ORDER BY id ASC LIMIT $1 OFFSET $2",
		perPage, (page-1)*perPage)
	if err != nil {
		return result, fmt.Errorf("error listing posts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return result, fmt.Errorf("error scanning post: %w", err)
		}
		result.Posts = append(result.Posts, p)
	}
	if err := rows.Err(); err != nil {
		return result, fmt.Errorf("error listing posts: %w", err)
	}
	return result, nil
}

func (s *PostStore) Create(ctx context.Context, title string) (domain.Post, error) {
	if title == "" {
		return domain.Post{}, domain.NewValidationError("title", domain.RequiredMessage("title"))
	}
	p := domain.Post{Title: title, CreatedAt: s.timestamp()}
	p.UpdatedAt = p.CreatedAt
	row := s.db.QueryRowContext(ctx,
		"INSERT INTO posts (title, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id",
		p.Title, p.CreatedAt, p.UpdatedAt)
	if err := row.Scan(&p.ID); err != nil {
		return domain.Post{}, fmt.Errorf("error inserting post: %w", err)
	}
	return p, nil
}

func (s *PostStore) Find(ctx context.Context, id int64) (domain.Post, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE id = $1", id)
	p, err := scanPost(row)
	if err != nil {
		return p, fmt.Errorf("error finding post %d: %w", id, err)
	}
	return p, nil
}

// Update replaces the title of post id and refreshes updated_at. The
// row is read back in the same transaction as the write.
func (s *PostStore) Update(ctx context.Context, id int64, title string) (domain.Post, error) {
	if title == "" {
		return domain.Post{}, domain.NewValidationError("title", domain.RequiredMessage("title"))
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Post{}, fmt.Errorf("error in begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"UPDATE posts SET title = $1, updated_at = $2 WHERE id = $3",
		title, s.timestamp(), id)
	if err != nil {
		return domain.Post{}, fmt.Errorf("error updating post %d: %w", id, err)
	}
	if err := expectOneRow(result); err != nil {
		return domain.Post{}, fmt.Errorf("error updating post %d: %w", id, err)
	}
	p, err := scanPost(tx.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE id = $1", id))
	if err != nil {
		return domain.Post{}, fmt.Errorf("error reading updated post %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Post{}, fmt.Errorf("error in commit transaction: %w", err)
	}
	return p, nil
}

func (s *PostStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("error deleting post %d: %w", id, err)
	}
	if err := expectOneRow(result); err != nil {
		return fmt.Errorf("error deleting post %d: %w", id, err)
	}
	return nil
}

func expectOneRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
