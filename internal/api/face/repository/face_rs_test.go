package faceRepository

import (
	"FaceAttendance/internal/api/face"
	"FaceAttendance/internal/entity"
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func faceDoc(id, name, code string, created time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "face", Value: "data:image/jpeg;base64,AA=="},
		{Key: "name", Value: name},
		{Key: "code", Value: code},
		{Key: "created_at", Value: created},
		{Key: "updated_at", Value: created},
	}
}

func TestMongoFacesRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	mt.Run("create face", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		client, err := New(mt.DB, quietLogger()).NewClient(true)
		require.NoError(mt, err)

		err = client.Faces.CreateFace(context.Background(), entity.RegisteredFace{
			ID:        "01HXFACE",
			Name:      "Ada",
			Code:      "uuid-1",
			CreatedAt: created,
			UpdatedAt: created,
		})
		assert.NoError(mt, err)
		assert.NoError(mt, client.Commit())
	})

	mt.Run("get face by code", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + facesCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, faceDoc("01HXFACE", "Ada", "uuid-1", created)))

		client, err := New(mt.DB, quietLogger()).NewClient(false)
		require.NoError(mt, err)

		got, err := client.Faces.GetFaceByCode(context.Background(), "uuid-1")
		require.NoError(mt, err)
		assert.Equal(mt, "01HXFACE", got.ID)
		assert.Equal(mt, "Ada", got.Name)
		assert.True(mt, created.Equal(got.CreatedAt))
	})

	mt.Run("get face by id not found", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + facesCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		client, err := New(mt.DB, quietLogger()).NewClient(false)
		require.NoError(mt, err)

		_, err = client.Faces.GetFaceByID(context.Background(), "missing")
		assert.ErrorIs(mt, err, face.ErrFaceNotFound)
	})

	mt.Run("list faces", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + facesCollection
		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, faceDoc("02", "Sam", "uuid-2", created.Add(time.Hour)))
		second := mtest.CreateCursorResponse(1, ns, mtest.NextBatch, faceDoc("01", "Sam", "uuid-1", created))
		done := mtest.CreateCursorResponse(0, ns, mtest.NextBatch)
		mt.AddMockResponses(first, second, done)

		client, err := New(mt.DB, quietLogger()).NewClient(false)
		require.NoError(mt, err)

		faces, err := client.Faces.ListFaces(context.Background())
		require.NoError(mt, err)
		require.Len(mt, faces, 2)
		assert.Equal(mt, "02", faces[0].ID)
		assert.Equal(mt, "01", faces[1].ID)
		assert.Equal(mt, faces[0].Name, faces[1].Name)
	})

	mt.Run("get faces by ids skips query for empty input", func(mt *mtest.T) {
		client, err := New(mt.DB, quietLogger()).NewClient(false)
		require.NoError(mt, err)

		faces, err := client.Faces.GetFacesByIDs(context.Background(), nil)
		require.NoError(mt, err)
		assert.Empty(mt, faces)
	})

	mt.Run("insert error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		client, err := New(mt.DB, quietLogger()).NewClient(true)
		require.NoError(mt, err)

		err = client.Faces.CreateFace(context.Background(), entity.RegisteredFace{ID: "dup", Name: "Ada"})
		assert.Error(mt, err)
	})
}
