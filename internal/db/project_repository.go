package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/ad/go-portfolio-admin/internal/models"
)

var ErrProjectNotFound = errors.New("project not found")

const projectColumns = `id, title, description, image_url, project_url, created_at, updated_at`

type projectRow struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	ImageURL    sql.NullString `db:"image_url"`
	ProjectURL  sql.NullString `db:"project_url"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r projectRow) project() models.Project {
	return models.Project{
		ID:          r.ID,
		Title:       r.Title,
		Description: fromNull(r.Description),
		ImageURL:    fromNull(r.ImageURL),
		ProjectURL:  fromNull(r.ProjectURL),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func fromNull(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return models.StringPtr(s.String)
}

func toNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

type ProjectRepository struct {
	queue *DBQueue
}

func NewProjectRepository(queue *DBQueue) *ProjectRepository {
	return &ProjectRepository{queue: queue}
}

// GetAll returns every project, newest first.
func (r *ProjectRepository) GetAll(ctx context.Context) ([]models.Project, error) {
	var rows []projectRow
	err := r.queue.DB().SelectContext(ctx, &rows, `
		SELECT `+projectColumns+`
		FROM projects
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, errors.Wrap(err, "select projects")
	}

	projects := make([]models.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, row.project())
	}
	return projects, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	db := r.queue.DB()

	var row projectRow
	err := db.GetContext(ctx, &row, db.Rebind(`SELECT `+projectColumns+` FROM projects WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select project %d", id)
	}

	project := row.project()
	return &project, nil
}

// Create stores a new project and returns its id. Nil fields become NULL.
func (r *ProjectRepository) Create(ctx context.Context, p models.NewProject) (int64, error) {
	result, err := r.queue.Execute(func(db *sqlx.DB) (interface{}, error) {
		var id int64
		err := db.QueryRowxContext(ctx, db.Rebind(`
			INSERT INTO projects (title, description, image_url, project_url)
			VALUES (?, ?, ?, ?)
			RETURNING id
		`), p.Title, toNull(p.Description), toNull(p.ImageURL), toNull(p.ProjectURL)).Scan(&id)
		return id, err
	})
	if err != nil {
		return 0, errors.Wrap(err, "insert project")
	}
	return result.(int64), nil
}

// Update merges patch into the stored project. The read and the write run in
// one queued transaction so concurrent edits of different fields both land.
func (r *ProjectRepository) Update(ctx context.Context, id int64, patch models.ProjectPatch) error {
	return r.queue.ExecuteTx(ctx, func(tx *sqlx.Tx) error {
		query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
		if r.queue.Dialect() == DialectPostgres {
			query += ` FOR UPDATE`
		}

		var row projectRow
		err := tx.GetContext(ctx, &row, tx.Rebind(query), id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProjectNotFound
		}
		if err != nil {
			return errors.Wrapf(err, "select project %d", id)
		}

		if patch.Empty() {
			return nil
		}

		merged := patch.Apply(row.project())
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			UPDATE projects
			SET title = ?, description = ?, image_url = ?, project_url = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`), merged.Title, toNull(merged.Description), toNull(merged.ImageURL), toNull(merged.ProjectURL), id)
		return errors.Wrapf(err, "update project %d", id)
	})
}

func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.queue.Execute(func(db *sqlx.DB) (interface{}, error) {
		res, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM projects WHERE id = ?`), id)
		if err != nil {
			return nil, errors.Wrapf(err, "delete project %d", id)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, errors.Wrap(err, "rows affected")
		}
		if n == 0 {
			return nil, ErrProjectNotFound
		}
		return nil, nil
	})
	return err
}

func (r *ProjectRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.queue.DB().GetContext(ctx, &n, `SELECT COUNT(*) FROM projects`); err != nil {
		return 0, errors.Wrap(err, "count projects")
	}
	return n, nil
}
