package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var ErrPostNotFound = errors.New("post not found")
var ErrPostNotOwned = errors.New("post not owned by user")
var ErrCommentNotFound = errors.New("comment not found")
var ErrAlreadyLiked = errors.New("post already liked by user")
var ErrNotLiked = errors.New("post not liked by user")

type Post struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Text      string
	Name      string
	Avatar    string
	CreatedAt time.Time

	Likes    []Like
	Comments []Comment
}

type Like struct {
	PostID    uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
}

type Comment struct {
	ID        uuid.UUID
	PostID    uuid.UUID
	UserID    uuid.UUID
	Text      string
	Name      string
	Avatar    string
	CreatedAt time.Time
}

type PostRepository struct {
	db *DB
}

func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *Post) error {
	query := `
		INSERT INTO posts (id, user_id, text, name, avatar)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	return r.db.QueryRowContext(ctx, query,
		post.ID, post.UserID, post.Text, post.Name, post.Avatar,
	).Scan(&post.CreatedAt)
}

// List returns all posts, newest first, with their likes and comments.
func (r *PostRepository) List(ctx context.Context) ([]*Post, error) {
	query := `
		SELECT id, user_id, text, name, avatar, created_at
		FROM posts
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*Post
	byID := make(map[uuid.UUID]*Post)
	for rows.Next() {
		p := &Post{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.Text, &p.Name, &p.Avatar, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return posts, nil
	}

	if err := r.attachLikes(ctx, byID); err != nil {
		return nil, err
	}
	if err := r.attachComments(ctx, byID); err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	query := `
		SELECT id, user_id, text, name, avatar, created_at
		FROM posts
		WHERE id = $1
	`

	p := &Post{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.Text, &p.Name, &p.Avatar, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	byID := map[uuid.UUID]*Post{p.ID: p}
	if err := r.attachLikes(ctx, byID); err != nil {
		return nil, err
	}
	if err := r.attachComments(ctx, byID); err != nil {
		return nil, err
	}

	return p, nil
}

// Delete removes a post owned by userID. Deleting another user's post is
// reported as ErrPostNotOwned, a missing post as ErrPostNotFound.
func (r *PostRepository) Delete(ctx context.Context, postID, userID uuid.UUID) error {
	var ownerID uuid.UUID
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM posts WHERE id = $1`, postID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPostNotFound
		}
		return err
	}
	if ownerID != userID {
		return ErrPostNotOwned
	}

	_, err = r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	return err
}

// AddLike records a like. The composite primary key enforces one like per
// user per post, concurrent duplicates included.
func (r *PostRepository) AddLike(ctx context.Context, postID, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`, postID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyLiked
		}
		if isForeignKeyViolation(err) {
			return ErrPostNotFound
		}
		return err
	}

	return nil
}

func (r *PostRepository) RemoveLike(ctx context.Context, postID, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotLiked
	}

	return nil
}

func (r *PostRepository) AddComment(ctx context.Context, comment *Comment) error {
	query := `
		INSERT INTO post_comments (id, post_id, user_id, text, name, avatar)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		comment.ID, comment.PostID, comment.UserID, comment.Text, comment.Name, comment.Avatar,
	).Scan(&comment.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrPostNotFound
		}
		return err
	}

	return nil
}

// DeleteComment removes a comment owned by userID.
func (r *PostRepository) DeleteComment(ctx context.Context, postID, commentID, userID uuid.UUID) error {
	var ownerID uuid.UUID
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM post_comments WHERE id = $1 AND post_id = $2`,
		commentID, postID,
	).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCommentNotFound
		}
		return err
	}
	if ownerID != userID {
		return ErrPostNotOwned
	}

	_, err = r.db.ExecContext(ctx, `DELETE FROM post_comments WHERE id = $1`, commentID)
	return err
}

func (r *PostRepository) attachLikes(ctx context.Context, byID map[uuid.UUID]*Post) error {
	ids := postIDs(byID)

	query := `
		SELECT post_id, user_id, created_at
		FROM post_likes
		WHERE post_id = ANY($1::uuid[])
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, idArray(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var l Like
		if err := rows.Scan(&l.PostID, &l.UserID, &l.CreatedAt); err != nil {
			return err
		}
		if p, ok := byID[l.PostID]; ok {
			p.Likes = append(p.Likes, l)
		}
	}

	return rows.Err()
}

func (r *PostRepository) attachComments(ctx context.Context, byID map[uuid.UUID]*Post) error {
	ids := postIDs(byID)

	query := `
		SELECT id, post_id, user_id, text, name, avatar, created_at
		FROM post_comments
		WHERE post_id = ANY($1::uuid[])
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, idArray(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Text, &c.Name, &c.Avatar, &c.CreatedAt); err != nil {
			return err
		}
		if p, ok := byID[c.PostID]; ok {
			p.Comments = append(p.Comments, c)
		}
	}

	return rows.Err()
}

func postIDs(byID map[uuid.UUID]*Post) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	return ids
}

func idArray(ids []uuid.UUID) interface{} {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return pq.Array(strs)
}
