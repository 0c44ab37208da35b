package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"beaconattendance/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// Overlap probes under half-open semantics: an existing row conflicts when
// existing.start < new.end AND existing.end > new.start. Touching intervals
// pass. FOR UPDATE locks the conflicting ranges for the rest of the
// transaction; the serializable isolation level covers phantom inserts.
const (
	roomConflictQuery = `
		SELECT id FROM event
		WHERE room_id = $1 AND start_time < $2 AND end_time > $3 AND id <> $4
		LIMIT 1
		FOR UPDATE
	`
	teacherConflictQuery = `
		SELECT id FROM event
		WHERE event_personal = $1 AND start_time < $2 AND end_time > $3 AND id <> $4
		LIMIT 1
		FOR UPDATE
	`
)

// checkConflicts runs the room and teacher overlap probes for one draft
// inside tx, excluding excludeID (0 on create). Room is checked first.
func checkConflicts(ctx context.Context, tx *sql.Tx, e *domain.EventInstance, excludeID int64) error {
	var id int64
	err := tx.QueryRowContext(ctx, roomConflictQuery, e.RoomID, e.EndTime, e.StartTime, excludeID).Scan(&id)
	if err == nil {
		return domain.ErrRoomConflict
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	err = tx.QueryRowContext(ctx, teacherConflictQuery, e.TeacherID, e.EndTime, e.StartTime, excludeID).Scan(&id)
	if err == nil {
		return domain.ErrTeacherConflict
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return nil
}

func (r *eventRepository) CreateBatch(ctx context.Context, drafts []*domain.EventInstance) (int, error) {
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, d := range drafts {
		if err := checkConflicts(ctx, tx, d, 0); err != nil {
			return 0, err
		}
	}

	// One multi-row INSERT keeps the batch all-or-nothing even without the
	// surrounding transaction.
	placeholders := make([]string, 0, len(drafts))
	args := make([]interface{}, 0, len(drafts)*8)
	for i, d := range drafts {
		base := i * 8
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args, d.CourseID, d.RoomID, d.Name, string(d.Type), d.StartTime, d.EndTime, d.TeacherID, d.CreatedBy)
	}
	query := fmt.Sprintf(`
		INSERT INTO event (course_id, room_id, event_name, event_type, start_time, end_time, event_personal, created_by)
		VALUES %s
	`, strings.Join(placeholders, ", "))

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.EventInstance, error) {
	query := `
		SELECT id, course_id, room_id, event_name, event_type, start_time, end_time, accept_attendance, event_personal
		FROM event
		WHERE id = $1
	`
	e := &domain.EventInstance{}
	var eventType string
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.CourseID, &e.RoomID, &e.Name, &eventType,
		&e.StartTime, &e.EndTime, &e.AcceptAttendance, &e.TeacherID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	e.Type = domain.EventType(eventType)
	return e, nil
}

func (r *eventRepository) GetDetail(ctx context.Context, id int64) (*domain.EventDetail, error) {
	query := `
		SELECT event.id, event.course_id, event.room_id, event.event_personal, event.event_name, event.event_type,
			event.start_time, event.end_time, event.accept_attendance,
			course.course_code, course.course_name, course.course_personal,
			room.name, users.first_name, users.last_name
		FROM event
		LEFT JOIN course ON event.course_id = course.id
		LEFT JOIN room ON event.room_id = room.id
		LEFT JOIN users ON event.event_personal = users.id
		WHERE event.id = $1
	`
	d := &domain.EventDetail{}
	var eventType string
	var personnel pq.Int64Array
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.CourseID, &d.RoomID, &d.TeacherID, &d.Name, &eventType,
		&d.StartTime, &d.EndTime, &d.AcceptAttendance,
		&d.CourseCode, &d.CourseName, &personnel,
		&d.RoomName, &d.TeacherFirst, &d.TeacherLast,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	d.Type = domain.EventType(eventType)
	d.CoursePersonnel = personnel
	return d, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.EventInstance) error {
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var curRoom int64
	var curStart, curEnd time.Time
	err = tx.QueryRowContext(ctx, `
		SELECT room_id, start_time, end_time FROM event WHERE id = $1 FOR UPDATE
	`, e.ID).Scan(&curRoom, &curStart, &curEnd)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	// A bit-identical room and interval needs no re-validation: the stored
	// placement already satisfied the overlap invariant.
	unchanged := curRoom == e.RoomID && curStart.Equal(e.StartTime) && curEnd.Equal(e.EndTime)
	if !unchanged {
		if err := checkConflicts(ctx, tx, e, e.ID); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE event SET course_id = $1, room_id = $2, event_name = $3, event_type = $4,
			start_time = $5, end_time = $6, event_personal = $7, updated_by = $8
		WHERE id = $9
	`, e.CourseID, e.RoomID, e.Name, string(e.Type), e.StartTime, e.EndTime, e.TeacherID, e.UpdatedBy, e.ID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}

func (r *eventRepository) ToggleWindow(ctx context.Context, eventID, callerID int64, now time.Time) (bool, error) {
	// Ownership and time-window guards are re-checked in the statement
	// itself, so the flip is atomic against concurrent writers.
	query := `
		UPDATE event SET accept_attendance = NOT accept_attendance, updated_by = $1
		WHERE id = $2 AND event_personal = $1 AND start_time <= $3 AND end_time >= $3
		RETURNING accept_attendance
	`
	var open bool
	err := r.DB.QueryRowContext(ctx, query, callerID, eventID, now).Scan(&open)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, domain.ErrNotFound
		}
		return false, err
	}
	return open, nil
}

func (r *eventRepository) ListActiveByRooms(ctx context.Context, roomIDs []int64, now time.Time) ([]*domain.ActiveEvent, error) {
	query := `
		SELECT event.id, course.course_name, room.name
		FROM event
		LEFT JOIN course ON event.course_id = course.id
		LEFT JOIN room ON event.room_id = room.id
		WHERE event.room_id = ANY($1)
		AND event.accept_attendance = true
		AND event.start_time <= $2
		AND event.end_time >= $2
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(roomIDs), now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.ActiveEvent
	for rows.Next() {
		e := &domain.ActiveEvent{}
		if err := rows.Scan(&e.EventID, &e.CourseName, &e.RoomName); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]*domain.EventDetail, error) {
	query := `
		SELECT event.id, event.course_id, event.room_id, event.event_personal, event.event_name, event.event_type,
			event.start_time, event.end_time, event.accept_attendance,
			course.course_code, course.course_name,
			room.name, users.first_name, users.last_name
		FROM event
		LEFT JOIN course ON event.course_id = course.id
		LEFT JOIN room ON event.room_id = room.id
		LEFT JOIN users ON event.event_personal = users.id
		WHERE event.event_personal = $1
		ORDER BY event.start_time
	`
	rows, err := r.DB.QueryContext(ctx, query, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.EventDetail
	for rows.Next() {
		d := &domain.EventDetail{}
		var eventType string
		if err := rows.Scan(
			&d.ID, &d.CourseID, &d.RoomID, &d.TeacherID, &d.Name, &eventType,
			&d.StartTime, &d.EndTime, &d.AcceptAttendance,
			&d.CourseCode, &d.CourseName,
			&d.RoomName, &d.TeacherFirst, &d.TeacherLast,
		); err != nil {
			return nil, err
		}
		d.Type = domain.EventType(eventType)
		events = append(events, d)
	}
	return events, rows.Err()
}

func (r *eventRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM event WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
