package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"beaconattendance/internal/domain"
)

type attendanceRepository struct {
	DB *sql.DB
}

func NewAttendanceRepository(db *sql.DB) domain.AttendanceRepository {
	return &attendanceRepository{
		DB: db,
	}
}

// Create inserts one attendance row. The unique (event_id, student_id) pair is
// enforced by the store; a second insert for the same pair surfaces as
// ErrDuplicateAttendance without touching the existing row.
func (r *attendanceRepository) Create(ctx context.Context, a *domain.Attendance) error {
	query := `
		INSERT INTO attendance (event_id, student_id, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.DB.ExecContext(ctx, query, a.EventID, a.StudentID, a.RecordedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return domain.ErrDuplicateAttendance
			case "23503":
				return domain.ErrReferentialViolation
			}
		}
		return err
	}
	return nil
}
