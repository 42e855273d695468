package attendanceRepository

import (
	"FaceAttendance/internal/entity"
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Rebind(query string) string
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

type Client struct {
	Events interface {
		CreateEvent(ctx context.Context, event entity.AttendanceEvent) error
		ListEvents(ctx context.Context, filter entity.AttendanceFilter) ([]entity.AttendanceEvent, error)
	}

	Commit   func() error
	Rollback func() error
}

func New(db *mongo.Database, log *logrus.Logger) Repository {
	return &mongoRepository{
		DB:  db,
		log: log,
	}
}

type mongoRepository struct {
	DB  *mongo.Database
	log *logrus.Logger
}

func (r *mongoRepository) NewClient(_ bool) (Client, error) {
	return Client{
		Events:   &eventsRepository{coll: r.DB.Collection(eventsCollection), log: r.log},
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

func NewPostgres(db *sqlx.DB, log *logrus.Logger) Repository {
	return &sqlRepository{
		DB:  db,
		log: log,
	}
}

type sqlRepository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

func (r *sqlRepository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Events:   &eventsSQLRepository{q: sqlExecutor, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

type eventsRepository struct {
	coll *mongo.Collection
	log  *logrus.Logger
}

type eventsSQLRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
