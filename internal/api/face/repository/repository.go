package faceRepository

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
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

type Client struct {
	Faces interface {
		CreateFace(ctx context.Context, face entity.RegisteredFace) error
		GetFaceByID(ctx context.Context, id string) (entity.RegisteredFace, error)
		GetFaceByCode(ctx context.Context, code string) (entity.RegisteredFace, error)
		GetFacesByIDs(ctx context.Context, ids []string) ([]entity.RegisteredFace, error)
		ListFaces(ctx context.Context) ([]entity.RegisteredFace, error)
	}

	Commit   func() error
	Rollback func() error
}

// New returns the document store backed repository.
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

// Documents are written one at a time so there is nothing to commit.
func (r *mongoRepository) NewClient(_ bool) (Client, error) {
	return Client{
		Faces:    &facesRepository{coll: r.DB.Collection(facesCollection), log: r.log},
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
		Faces:    &facesSQLRepository{q: sqlExecutor, log: r.log},
		Commit:   commitFunc,
		Rollback: rollbackFunc,
	}, nil
}

type facesRepository struct {
	coll *mongo.Collection
	log  *logrus.Logger
}

type facesSQLRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
