package domain

import "context"

// Course groups event instances and carries the personnel list that gates
// scheduling and deletion.
type Course struct {
	ID        int64   `json:"courseId"`
	Code      string  `json:"courseCode"`
	Name      string  `json:"courseName"`
	Personnel []int64 `json:"coursePersonal"`
}

// HasPersonnel reports whether the user is on the course's personnel list.
func (c *Course) HasPersonnel(userID int64) bool {
	for _, id := range c.Personnel {
		if id == userID {
			return true
		}
	}
	return false
}

// CourseRepository is the read side of course storage consumed by the
// scheduling core. Course CRUD itself lives outside this module.
type CourseRepository interface {
	GetByID(ctx context.Context, id int64) (*Course, error)
}

// Room is a physical room events are scheduled into.
type Room struct {
	ID   int64  `json:"roomId"`
	Name string `json:"roomName"`
}
