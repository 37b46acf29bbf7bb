package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/repository"
)

type CommentRepo struct{ db *sql.DB }

func NewCommentRepo(db *sql.DB) repository.CommentRepository {
	return &CommentRepo{db: db}
}

func scanComment(row rowScanner) (*entity.Comment, error) {
	var c entity.Comment
	if err := row.Scan(&c.ID, &c.PostID, &c.User, &c.Email, &c.Text, &c.Status, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (repo *CommentRepo) Create(ctx context.Context, c *entity.Comment) error {
	const query = `
INSERT INTO comments (id, post_id, user_name, email, text, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()
	if _, err := repo.db.ExecContext(ctx, query, c.ID, c.PostID, c.User, c.Email, c.Text, c.Status, c.CreatedAt); err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *CommentRepo) Get(ctx context.Context, id string) (*entity.Comment, error) {
	const query = `
SELECT id, post_id, user_name, email, text, status, created_at
FROM comments
WHERE id = $1
LIMIT 1`
	c, err := scanComment(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return c, nil
}

func (repo *CommentRepo) ListByPost(ctx context.Context, postID, status string) ([]*entity.Comment, error) {
	query := `
SELECT id, post_id, user_name, email, text, status, created_at
FROM comments
WHERE post_id = $1`
	args := []interface{}{postID}
	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += "\nORDER BY created_at DESC"

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListByPost: %w", err)
	}
	defer func() { _ = rows.Close() }()

	comments := make([]*entity.Comment, 0, 20)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByPost: Scan: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (repo *CommentRepo) UpdateStatus(ctx context.Context, id, status string) error {
	const query = `UPDATE comments SET status = $1 WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("UpdateStatus: no rows affected")
	}
	return nil
}

func (repo *CommentRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM comments WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}

func (repo *CommentRepo) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	const query = `DELETE FROM comments WHERE post_id = $1`
	res, err := repo.db.ExecContext(ctx, query, postID)
	if err != nil {
		return 0, fmt.Errorf("DeleteByPost: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
