package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

const actorColumns = "actor_id, name, bio, photo_url, date_of_birth, nationality, created_at, updated_at"

// ActorRepo manages the `actors` table.
type ActorRepo struct{ db DBTX }

func NewActorRepo(db DBTX) *ActorRepo { return &ActorRepo{db: db} }

func scanActor(row rowScanner, a *model.Actor) error {
	return row.Scan(&a.ID, &a.Name, &a.Bio, &a.PhotoURL, &a.DateOfBirth, &a.Nationality, &a.CreatedAt, &a.UpdatedAt)
}

func (r *ActorRepo) Create(ctx context.Context, a *model.Actor) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO actors (name, bio, photo_url, date_of_birth, nationality) VALUES (?, ?, ?, ?, ?)",
		a.Name, a.Bio, a.PhotoURL, a.DateOfBirth, a.Nationality)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return scanActor(r.db.QueryRowContext(ctx, "SELECT "+actorColumns+" FROM actors WHERE actor_id = ?", id), a)
}

func (r *ActorRepo) GetByID(ctx context.Context, id uint64) (*model.Actor, error) {
	var a model.Actor
	if err := scanActor(r.db.QueryRowContext(ctx, "SELECT "+actorColumns+" FROM actors WHERE actor_id = ?", id), &a); err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// List returns actors ordered by name, optionally filtered by a name
// substring.
func (r *ActorRepo) List(ctx context.Context, search string) ([]model.Actor, error) {
	q := "SELECT " + actorColumns + " FROM actors"
	var args []any
	if s := strings.TrimSpace(search); s != "" {
		q += " WHERE name LIKE ?"
		args = append(args, like(s))
	}
	rows, err := r.db.QueryContext(ctx, q+" ORDER BY name, actor_id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Actor{}
	for rows.Next() {
		var a model.Actor
		if err := scanActor(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
