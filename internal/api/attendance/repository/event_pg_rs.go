package attendanceRepository

import (
	"FaceAttendance/internal/entity"
	contextPkg "FaceAttendance/pkg/context"
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type AttendanceEventDB struct {
	ID               string         `db:"id"`
	RegisteredFaceID string         `db:"registered_face_id"`
	RoomID           sql.NullString `db:"room_id"`
	Note             sql.NullString `db:"note"`
	CheckinTime      time.Time      `db:"checkin_time"`
	IsCheckOut       bool           `db:"is_check_out"`
	SnapshotURL      sql.NullString `db:"snapshot_url"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (r *eventsSQLRepository) CreateEvent(ctx context.Context, event entity.AttendanceEvent) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"id":                 event.ID,
		"registered_face_id": event.RegisteredFaceID,
		"room_id":            nullString(event.RoomID),
		"note":               nullString(event.Note),
		"checkin_time":       event.CheckinTime,
		"is_check_out":       event.IsCheckOut,
		"snapshot_url":       nullString(event.SnapshotURL),
		"created_at":         event.CreatedAt,
		"updated_at":         event.UpdatedAt,
	}

	query, args, err := sqlx.Named(queryCreateEvent, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateEvent")
		return err
	}
	query = r.q.Rebind(query)

	if _, err = r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating attendance event")
		return err
	}

	return nil
}

func (r *eventsSQLRepository) ListEvents(ctx context.Context, filter entity.AttendanceFilter) ([]entity.AttendanceEvent, error) {
	requestID := contextPkg.GetRequestID(ctx)

	namedQuery := queryListEvents
	if filter.RoomID != "" {
		namedQuery = queryListEventsByRoom
	}

	// LIMIT NULL means no limit in postgres.
	var limit sql.NullInt64
	if filter.Limit > 0 {
		limit = sql.NullInt64{Int64: int64(filter.Limit), Valid: true}
	}

	query, args, err := sqlx.Named(namedQuery, map[string]interface{}{
		"room_id":      filter.RoomID,
		"room_pattern": containsPattern(filter.RoomID),
		"limit":        limit,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListEvents named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	var rows []AttendanceEventDB
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListEvents execution err")
		return nil, err
	}

	events := make([]entity.AttendanceEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, entity.AttendanceEvent{
			ID:               row.ID,
			RegisteredFaceID: row.RegisteredFaceID,
			RoomID:           row.RoomID.String,
			Note:             row.Note.String,
			CheckinTime:      row.CheckinTime,
			IsCheckOut:       row.IsCheckOut,
			SnapshotURL:      row.SnapshotURL.String,
			CreatedAt:        row.CreatedAt,
			UpdatedAt:        row.UpdatedAt,
		})
	}

	return events, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching roomID literally
// anywhere in the text. Backslash is the default LIKE escape in postgres.
func containsPattern(roomID string) string {
	return "%" + likeEscaper.Replace(roomID) + "%"
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
