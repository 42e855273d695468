package attendanceRepository

import (
	"FaceAttendance/internal/entity"
	contextPkg "FaceAttendance/pkg/context"
	"context"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const eventsCollection = "attendance_events"

type AttendanceEventDocument struct {
	ID               string    `bson:"_id"`
	RegisteredFaceID string    `bson:"registered_face_id"`
	RoomID           string    `bson:"room_id,omitempty"`
	Note             string    `bson:"note"`
	CheckinTime      time.Time `bson:"checkin_time"`
	IsCheckOut       bool      `bson:"is_check_out"`
	SnapshotURL      string    `bson:"snapshot_url,omitempty"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

func (r *eventsRepository) CreateEvent(ctx context.Context, event entity.AttendanceEvent) error {
	requestID := contextPkg.GetRequestID(ctx)

	doc := AttendanceEventDocument{
		ID:               event.ID,
		RegisteredFaceID: event.RegisteredFaceID,
		RoomID:           event.RoomID,
		Note:             event.Note,
		CheckinTime:      event.CheckinTime,
		IsCheckOut:       event.IsCheckOut,
		SnapshotURL:      event.SnapshotURL,
		CreatedAt:        event.CreatedAt,
		UpdatedAt:        event.UpdatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateEvent execution err")
		return err
	}

	return nil
}

func (r *eventsRepository) ListEvents(ctx context.Context, filter entity.AttendanceFilter) ([]entity.AttendanceEvent, error) {
	requestID := contextPkg.GetRequestID(ctx)

	opts := options.Find().SetSort(bson.D{{Key: "checkin_time", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.coll.Find(ctx, roomFilter(filter.RoomID), opts)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListEvents execution err")
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []AttendanceEventDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListEvents decode err")
		return nil, err
	}

	events := make([]entity.AttendanceEvent, 0, len(docs))
	for _, doc := range docs {
		events = append(events, entity.AttendanceEvent{
			ID:               doc.ID,
			RegisteredFaceID: doc.RegisteredFaceID,
			RoomID:           doc.RoomID,
			Note:             doc.Note,
			CheckinTime:      doc.CheckinTime,
			IsCheckOut:       doc.IsCheckOut,
			SnapshotURL:      doc.SnapshotURL,
			CreatedAt:        doc.CreatedAt,
			UpdatedAt:        doc.UpdatedAt,
		})
	}

	return events, nil
}

// roomFilter matches the room_id field and, for events written before the
// field existed, a case-insensitive mention of the room in the note.
func roomFilter(roomID string) bson.D {
	if roomID == "" {
		return bson.D{}
	}

	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "room_id", Value: roomID}},
		bson.D{
			{Key: "room_id", Value: bson.D{{Key: "$in", Value: bson.A{nil, ""}}}},
			{Key: "note", Value: bson.D{
				{Key: "$regex", Value: regexp.QuoteMeta(roomID)},
				{Key: "$options", Value: "i"},
			}},
		},
	}}}
}
