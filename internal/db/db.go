package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

type DB struct {
	*sql.DB
}

func New(host, port, user, password, dbname string) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

func (db *DB) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		avatar TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS profiles (
		user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		company VARCHAR(255),
		website VARCHAR(255),
		location VARCHAR(255),
		status VARCHAR(255) NOT NULL,
		skills TEXT[] NOT NULL,
		bio TEXT,
		github_username VARCHAR(100),
		youtube VARCHAR(255),
		twitter VARCHAR(255),
		facebook VARCHAR(255),
		linkedin VARCHAR(255),
		instagram VARCHAR(255),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS experiences (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		company VARCHAR(255) NOT NULL,
		location VARCHAR(255),
		from_date DATE NOT NULL,
		to_date DATE,
		current BOOLEAN DEFAULT FALSE,
		description TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_experiences_user_id ON experiences(user_id);

	CREATE TABLE IF NOT EXISTS educations (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
		school VARCHAR(255) NOT NULL,
		degree VARCHAR(255) NOT NULL,
		field_of_study VARCHAR(255) NOT NULL,
		from_date DATE NOT NULL,
		to_date DATE,
		current BOOLEAN DEFAULT FALSE,
		description TEXT,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_educations_user_id ON educations(user_id);

	CREATE TABLE IF NOT EXISTS posts (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		name VARCHAR(100) NOT NULL,
		avatar TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);
	CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC);

	CREATE TABLE IF NOT EXISTS post_likes (
		post_id UUID NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		PRIMARY KEY (post_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS post_comments (
		id UUID PRIMARY KEY,
		post_id UUID NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		name VARCHAR(100) NOT NULL,
		avatar TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_post_comments_post_id ON post_comments(post_id);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
