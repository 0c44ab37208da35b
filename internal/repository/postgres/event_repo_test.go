package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"beaconattendance/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var helsinki = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		panic(err)
	}
	return loc
}()

func draftAt(day int, startHour, endHour int) *domain.EventInstance {
	return &domain.EventInstance{
		CourseID:  1,
		RoomID:    2,
		TeacherID: 3,
		Name:      "Algorithms",
		Type:      domain.EventClass,
		StartTime: time.Date(2026, 3, day, startHour, 0, 0, 0, helsinki),
		EndTime:   time.Date(2026, 3, day, endHour, 0, 0, 0, helsinki),
		CreatedBy: 3,
	}
}

func TestEventRepository_CreateBatch(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		drafts  []*domain.EventInstance
		mock    func(mock sqlmock.Sqlmock)
		want    int
		wantErr error
	}{
		{
			name:   "success two drafts",
			drafts: []*domain.EventInstance{draftAt(2, 10, 12), draftAt(3, 10, 12)},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				for range 2 {
					mock.ExpectQuery(`SELECT id FROM event\s+WHERE room_id =`).
						WillReturnError(sql.ErrNoRows)
					mock.ExpectQuery(`SELECT id FROM event\s+WHERE event_personal =`).
						WillReturnError(sql.ErrNoRows)
				}
				mock.ExpectExec(`INSERT INTO event \(course_id, room_id, event_name, event_type, start_time, end_time, event_personal, created_by\)`).
					WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectCommit()
			},
			want: 2,
		},
		{
			name:   "room conflict rolls back",
			drafts: []*domain.EventInstance{draftAt(2, 10, 12)},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT id FROM event\s+WHERE room_id =`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(44)))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrRoomConflict,
		},
		{
			name:   "teacher conflict rolls back",
			drafts: []*domain.EventInstance{draftAt(2, 10, 12)},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT id FROM event\s+WHERE room_id =`).
					WillReturnError(sql.ErrNoRows)
				mock.ExpectQuery(`SELECT id FROM event\s+WHERE event_personal =`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(45)))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrTeacherConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			got, err := repo.CreateBatch(ctx, tt.drafts)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		id      int64
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.EventInstance
		wantErr error
	}{
		{
			name: "success",
			id:   7,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, course_id, room_id, event_name, event_type, start_time, end_time, accept_attendance, event_personal`).
					WithArgs(int64(7)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "course_id", "room_id", "event_name", "event_type", "start_time", "end_time", "accept_attendance", "event_personal"}).
						AddRow(int64(7), int64(1), int64(2), "Algorithms", "class", start, end, true, int64(3)))
			},
			want: &domain.EventInstance{
				ID: 7, CourseID: 1, RoomID: 2, Name: "Algorithms", Type: domain.EventClass,
				StartTime: start, EndTime: end, AcceptAttendance: true, TeacherID: 3,
			},
		},
		{
			name: "not found",
			id:   99,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, course_id, room_id, event_name`).
					WithArgs(int64(99)).
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			got, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()
	ev := draftAt(2, 10, 12)
	ev.ID = 7
	ev.UpdatedBy = 3

	t.Run("unchanged placement skips conflict probes", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT room_id, start_time, end_time FROM event WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"room_id", "start_time", "end_time"}).
				AddRow(ev.RoomID, ev.StartTime, ev.EndTime))
		mock.ExpectExec(`UPDATE event SET course_id =`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewEventRepository(db)
		require.NoError(t, repo.Update(ctx, ev))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("moved into occupied room", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT room_id, start_time, end_time FROM event WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"room_id", "start_time", "end_time"}).
				AddRow(int64(9), ev.StartTime, ev.EndTime))
		mock.ExpectQuery(`SELECT id FROM event\s+WHERE room_id =`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(44)))
		mock.ExpectRollback()

		repo := NewEventRepository(db)
		require.ErrorIs(t, repo.Update(ctx, ev), domain.ErrRoomConflict)
	})

	t.Run("missing row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT room_id, start_time, end_time FROM event WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(7)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		repo := NewEventRepository(db)
		require.ErrorIs(t, repo.Update(ctx, ev), domain.ErrNotFound)
	})
}

func TestEventRepository_ToggleWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 10, 30, 0, 0, helsinki)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    bool
		wantErr error
	}{
		{
			name: "flips open",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE event SET accept_attendance = NOT accept_attendance`).
					WithArgs(int64(3), int64(7), now).
					WillReturnRows(sqlmock.NewRows([]string{"accept_attendance"}).AddRow(true))
			},
			want: true,
		},
		{
			name: "guards fail",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE event SET accept_attendance = NOT accept_attendance`).
					WithArgs(int64(3), int64(7), now).
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			got, err := repo.ToggleWindow(ctx, 7, 3, now)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_ListActiveByRooms(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 10, 30, 0, 0, helsinki)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE event.room_id = ANY\(\$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_name", "name"}).
			AddRow(int64(7), "Algorithms", "A101").
			AddRow(int64(8), "Databases", "B202"))

	repo := NewEventRepository(db)
	got, err := repo.ListActiveByRooms(ctx, []int64{2, 5}, now)
	require.NoError(t, err)
	require.Equal(t, []*domain.ActiveEvent{
		{EventID: 7, CourseName: "Algorithms", RoomName: "A101"},
		{EventID: 8, CourseName: "Databases", RoomName: "B202"},
	}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
