package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"beaconattendance/internal/domain"
)

type associationRepository struct {
	DB *sql.DB
}

func NewAssociationRepository(db *sql.DB) domain.AssociationRepository {
	return &associationRepository{
		DB: db,
	}
}

// RoomIDsByBeaconMACs maps beacon MAC addresses to the distinct rooms they are
// mounted in. MACs with no registered beacon contribute nothing.
func (r *associationRepository) RoomIDsByBeaconMACs(ctx context.Context, macs []string) ([]int64, error) {
	query := `
		SELECT room.id
		FROM beacon_room
		LEFT JOIN beacon ON beacon_room.beacon_id = beacon.id
		LEFT JOIN room ON beacon_room.room_id = room.id
		WHERE beacon.mac_address = ANY($1)
		GROUP BY room.id
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(macs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roomIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		roomIDs = append(roomIDs, id)
	}
	return roomIDs, rows.Err()
}
