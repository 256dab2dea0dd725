package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var ErrProfileNotFound = errors.New("profile not found")
var ErrExperienceNotFound = errors.New("experience not found")
var ErrEducationNotFound = errors.New("education not found")

type Profile struct {
	UserID         uuid.UUID
	Company        sql.NullString
	Website        sql.NullString
	Location       sql.NullString
	Status         string
	Skills         []string
	Bio            sql.NullString
	GithubUsername sql.NullString
	Youtube        sql.NullString
	Twitter        sql.NullString
	Facebook       sql.NullString
	Linkedin       sql.NullString
	Instagram      sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Joined from users
	UserName   string
	UserAvatar string
}

type Experience struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Company     string
	Location    sql.NullString
	From        time.Time
	To          sql.NullTime
	Current     bool
	Description sql.NullString
	CreatedAt   time.Time
}

type Education struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	School       string
	Degree       string
	FieldOfStudy string
	From         time.Time
	To           sql.NullTime
	Current      bool
	Description  sql.NullString
	CreatedAt    time.Time
}

type ProfileRepository struct {
	db *DB
}

func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Upsert creates the profile on first write and updates it afterwards.
// ON CONFLICT makes the create-or-update decision atomic, so two concurrent
// writes cannot produce two rows.
func (r *ProfileRepository) Upsert(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (
			user_id, company, website, location, status, skills, bio,
			github_username, youtube, twitter, facebook, linkedin, instagram
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id) DO UPDATE SET
			company = EXCLUDED.company,
			website = EXCLUDED.website,
			location = EXCLUDED.location,
			status = EXCLUDED.status,
			skills = EXCLUDED.skills,
			bio = EXCLUDED.bio,
			github_username = EXCLUDED.github_username,
			youtube = EXCLUDED.youtube,
			twitter = EXCLUDED.twitter,
			facebook = EXCLUDED.facebook,
			linkedin = EXCLUDED.linkedin,
			instagram = EXCLUDED.instagram,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	return r.db.QueryRowContext(ctx, query,
		p.UserID, p.Company, p.Website, p.Location, p.Status, pq.Array(p.Skills), p.Bio,
		p.GithubUsername, p.Youtube, p.Twitter, p.Facebook, p.Linkedin, p.Instagram,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	query := `
		SELECT p.user_id, p.company, p.website, p.location, p.status, p.skills,
			   p.bio, p.github_username, p.youtube, p.twitter, p.facebook,
			   p.linkedin, p.instagram, p.created_at, p.updated_at,
			   u.name, u.avatar
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
	`

	p := &Profile{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID, &p.Company, &p.Website, &p.Location, &p.Status, pq.Array(&p.Skills),
		&p.Bio, &p.GithubUsername, &p.Youtube, &p.Twitter, &p.Facebook,
		&p.Linkedin, &p.Instagram, &p.CreatedAt, &p.UpdatedAt,
		&p.UserName, &p.UserAvatar,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	return p, nil
}

// List returns all profiles joined with the owning user's name and avatar.
func (r *ProfileRepository) List(ctx context.Context) ([]*Profile, error) {
	query := `
		SELECT p.user_id, p.company, p.website, p.location, p.status, p.skills,
			   p.bio, p.github_username, p.youtube, p.twitter, p.facebook,
			   p.linkedin, p.instagram, p.created_at, p.updated_at,
			   u.name, u.avatar
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p := &Profile{}
		err := rows.Scan(
			&p.UserID, &p.Company, &p.Website, &p.Location, &p.Status, pq.Array(&p.Skills),
			&p.Bio, &p.GithubUsername, &p.Youtube, &p.Twitter, &p.Facebook,
			&p.Linkedin, &p.Instagram, &p.CreatedAt, &p.UpdatedAt,
			&p.UserName, &p.UserAvatar,
		)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

func (r *ProfileRepository) AddExperience(ctx context.Context, exp *Experience) error {
	query := `
		INSERT INTO experiences (id, user_id, title, company, location, from_date, to_date, current, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		exp.ID, exp.UserID, exp.Title, exp.Company, exp.Location,
		exp.From, exp.To, exp.Current, exp.Description,
	).Scan(&exp.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProfileNotFound
		}
		return err
	}

	return nil
}

func (r *ProfileRepository) RemoveExperience(ctx context.Context, userID, expID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM experiences WHERE id = $1 AND user_id = $2`, expID, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrExperienceNotFound
	}

	return nil
}

func (r *ProfileRepository) ListExperiences(ctx context.Context, userID uuid.UUID) ([]Experience, error) {
	query := `
		SELECT id, user_id, title, company, location, from_date, to_date, current, description, created_at
		FROM experiences
		WHERE user_id = $1
		ORDER BY from_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var experiences []Experience
	for rows.Next() {
		var exp Experience
		err := rows.Scan(
			&exp.ID, &exp.UserID, &exp.Title, &exp.Company, &exp.Location,
			&exp.From, &exp.To, &exp.Current, &exp.Description, &exp.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		experiences = append(experiences, exp)
	}

	return experiences, rows.Err()
}

func (r *ProfileRepository) AddEducation(ctx context.Context, edu *Education) error {
	query := `
		INSERT INTO educations (id, user_id, school, degree, field_of_study, from_date, to_date, current, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		edu.ID, edu.UserID, edu.School, edu.Degree, edu.FieldOfStudy,
		edu.From, edu.To, edu.Current, edu.Description,
	).Scan(&edu.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProfileNotFound
		}
		return err
	}

	return nil
}

func (r *ProfileRepository) RemoveEducation(ctx context.Context, userID, eduID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM educations WHERE id = $1 AND user_id = $2`, eduID, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrEducationNotFound
	}

	return nil
}

func (r *ProfileRepository) ListEducations(ctx context.Context, userID uuid.UUID) ([]Education, error) {
	query := `
		SELECT id, user_id, school, degree, field_of_study, from_date, to_date, current, description, created_at
		FROM educations
		WHERE user_id = $1
		ORDER BY from_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var educations []Education
	for rows.Next() {
		var edu Education
		err := rows.Scan(
			&edu.ID, &edu.UserID, &edu.School, &edu.Degree, &edu.FieldOfStudy,
			&edu.From, &edu.To, &edu.Current, &edu.Description, &edu.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		educations = append(educations, edu)
	}

	return educations, rows.Err()
}

// foreignKeyViolation is the Postgres error code for foreign key violations.
const foreignKeyViolation = "23503"

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == foreignKeyViolation
	}
	return false
}
