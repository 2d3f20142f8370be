package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/nicolep999/moodie/models"
)

// PersonRepository persists directors and actors. The two tables share a
// shape, so the queries are parameterized by table name from a fixed set.
type PersonRepository struct {
	db *sql.DB
}

func NewPersonRepository(db *sql.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

type person struct {
	ID        int64
	Name      string
	Bio       string
	BirthDate sql.NullTime
	Photo     string
}

func (r *PersonRepository) get(table string, id int64) (*person, error) {
	var p person
	err := r.db.QueryRow(`SELECT id, name, bio, birth_date, photo FROM `+table+` WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Bio, &p.BirthDate, &p.Photo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get from %s: %w", table, err)
	}
	return &p, nil
}

func (r *PersonRepository) getByName(table, name string) (*person, error) {
	var p person
	err := r.db.QueryRow(`SELECT id, name, bio, birth_date, photo FROM `+table+` WHERE name = ?`, name).
		Scan(&p.ID, &p.Name, &p.Bio, &p.BirthDate, &p.Photo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get from %s by name: %w", table, err)
	}
	return &p, nil
}

func (r *PersonRepository) insert(table string, name, bio string, birthDate any, photo string) (int64, error) {
	res, err := r.db.Exec(`INSERT INTO `+table+` (name, bio, birth_date, photo) VALUES (?, ?, ?, ?)`,
		name, bio, birthDate, photo)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	return res.LastInsertId()
}

func (r *PersonRepository) update(table string, id int64, name, bio string, birthDate any, photo string) error {
	res, err := r.db.Exec(`UPDATE `+table+` SET name = ?, bio = ?, birth_date = ?, photo = ? WHERE id = ?`,
		name, bio, birthDate, photo, id)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PersonRepository) delete(table string, id int64) error {
	res, err := r.db.Exec(`DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PersonRepository) list(table string) ([]person, error) {
	rows, err := r.db.Query(`SELECT id, name, bio, birth_date, photo FROM ` + table + ` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var people []person
	for rows.Next() {
		var p person
		if err := rows.Scan(&p.ID, &p.Name, &p.Bio, &p.BirthDate, &p.Photo); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

func nullableBirthDate(d *models.Director, a *models.Actor) any {
	switch {
	case d != nil && d.BirthDate != nil:
		return *d.BirthDate
	case a != nil && a.BirthDate != nil:
		return *a.BirthDate
	}
	return nil
}

func (p person) director() models.Director {
	d := models.Director{ID: p.ID, Name: p.Name, Bio: p.Bio, Photo: p.Photo}
	if p.BirthDate.Valid {
		d.BirthDate = &p.BirthDate.Time
	}
	return d
}

func (p person) actor() models.Actor {
	a := models.Actor{ID: p.ID, Name: p.Name, Bio: p.Bio, Photo: p.Photo}
	if p.BirthDate.Valid {
		a.BirthDate = &p.BirthDate.Time
	}
	return a
}

// CreateDirector inserts a director.
func (r *PersonRepository) CreateDirector(d *models.Director) error {
	id, err := r.insert("directors", d.Name, d.Bio, nullableBirthDate(d, nil), d.Photo)
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

// GetDirector returns the director with the given id.
func (r *PersonRepository) GetDirector(id int64) (*models.Director, error) {
	p, err := r.get("directors", id)
	if err != nil {
		return nil, err
	}
	d := p.director()
	return &d, nil
}

// GetOrCreateDirector returns the director with the given name, creating a
// bare record when missing.
func (r *PersonRepository) GetOrCreateDirector(name string) (*models.Director, error) {
	p, err := r.getByName("directors", name)
	if err == nil {
		d := p.director()
		return &d, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	d := &models.Director{Name: name}
	if err := r.CreateDirector(d); err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateDirector persists changes to a director.
func (r *PersonRepository) UpdateDirector(d *models.Director) error {
	return r.update("directors", d.ID, d.Name, d.Bio, nullableBirthDate(d, nil), d.Photo)
}

// DeleteDirector removes a director; movies referencing them keep a null
// director per the SET NULL rule.
func (r *PersonRepository) DeleteDirector(id int64) error {
	return r.delete("directors", id)
}

// ListDirectors returns all directors ordered by name.
func (r *PersonRepository) ListDirectors() ([]models.Director, error) {
	people, err := r.list("directors")
	if err != nil {
		return nil, err
	}
	directors := make([]models.Director, 0, len(people))
	for _, p := range people {
		directors = append(directors, p.director())
	}
	return directors, nil
}

// CreateActor inserts an actor.
func (r *PersonRepository) CreateActor(a *models.Actor) error {
	id, err := r.insert("actors", a.Name, a.Bio, nullableBirthDate(nil, a), a.Photo)
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

// GetActor returns the actor with the given id.
func (r *PersonRepository) GetActor(id int64) (*models.Actor, error) {
	p, err := r.get("actors", id)
	if err != nil {
		return nil, err
	}
	a := p.actor()
	return &a, nil
}

// GetOrCreateActor returns the actor with the given name, creating a bare
// record when missing.
func (r *PersonRepository) GetOrCreateActor(name string) (*models.Actor, error) {
	p, err := r.getByName("actors", name)
	if err == nil {
		a := p.actor()
		return &a, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	a := &models.Actor{Name: name}
	if err := r.CreateActor(a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateActor persists changes to an actor.
func (r *PersonRepository) UpdateActor(a *models.Actor) error {
	return r.update("actors", a.ID, a.Name, a.Bio, nullableBirthDate(nil, a), a.Photo)
}

// DeleteActor removes an actor and their movie join rows.
func (r *PersonRepository) DeleteActor(id int64) error {
	return r.delete("actors", id)
}

// ListActors returns all actors ordered by name.
func (r *PersonRepository) ListActors() ([]models.Actor, error) {
	people, err := r.list("actors")
	if err != nil {
		return nil, err
	}
	actors := make([]models.Actor, 0, len(people))
	for _, p := range people {
		actors = append(actors, p.actor())
	}
	return actors, nil
}
