package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"beaconattendance/internal/domain"
)

type courseRepository struct {
	DB *sql.DB
}

func NewCourseRepository(db *sql.DB) domain.CourseRepository {
	return &courseRepository{
		DB: db,
	}
}

func (r *courseRepository) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	query := `
		SELECT id, course_code, course_name, course_personal
		FROM course
		WHERE id = $1
	`
	c := &domain.Course{}
	var personnel pq.Int64Array
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Code, &c.Name, &personnel)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	c.Personnel = personnel
	return c, nil
}
