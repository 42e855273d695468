package faceRepository

import (
	"FaceAttendance/internal/api/face"
	"FaceAttendance/internal/entity"
	contextPkg "FaceAttendance/pkg/context"
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const facesCollection = "registered_faces"

type RegisteredFaceDocument struct {
	ID        string    `bson:"_id"`
	Face      string    `bson:"face"`
	Name      string    `bson:"name"`
	Age       *int      `bson:"age,omitempty"`
	Code      string    `bson:"code,omitempty"`
	Email     string    `bson:"email,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (r *facesRepository) CreateFace(ctx context.Context, registered entity.RegisteredFace) error {
	requestID := contextPkg.GetRequestID(ctx)

	doc := RegisteredFaceDocument{
		ID:        registered.ID,
		Face:      registered.Face,
		Name:      registered.Name,
		Age:       registered.Age,
		Code:      registered.Code,
		Email:     registered.Email,
		CreatedAt: registered.CreatedAt,
		UpdatedAt: registered.UpdatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateFace execution err")
		return err
	}

	return nil
}

func (r *facesRepository) GetFaceByID(ctx context.Context, id string) (entity.RegisteredFace, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}}, "GetFaceByID")
}

func (r *facesRepository) GetFaceByCode(ctx context.Context, code string) (entity.RegisteredFace, error) {
	return r.findOne(ctx, bson.D{{Key: "code", Value: code}}, "GetFaceByCode")
}

func (r *facesRepository) findOne(ctx context.Context, filter bson.D, operation string) (entity.RegisteredFace, error) {
	requestID := contextPkg.GetRequestID(ctx)

	var doc RegisteredFaceDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"filter":     filter,
			}).Warn(operation + " no documents found")
			return entity.RegisteredFace{}, face.ErrFaceNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(operation + " execution err")
		return entity.RegisteredFace{}, err
	}

	return r.makeFace(doc), nil
}

func (r *facesRepository) GetFacesByIDs(ctx context.Context, ids []string) ([]entity.RegisteredFace, error) {
	if len(ids) == 0 {
		return []entity.RegisteredFace{}, nil
	}

	opts := options.Find().SetProjection(bson.D{{Key: "face", Value: 0}})
	return r.find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}, opts, "GetFacesByIDs")
}

func (r *facesRepository) ListFaces(ctx context.Context) ([]entity.RegisteredFace, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.D{}, opts, "ListFaces")
}

func (r *facesRepository) find(ctx context.Context, filter bson.D, opts *options.FindOptions, operation string) ([]entity.RegisteredFace, error) {
	requestID := contextPkg.GetRequestID(ctx)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(operation + " execution err")
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []RegisteredFaceDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(operation + " decode err")
		return nil, err
	}

	faces := make([]entity.RegisteredFace, 0, len(docs))
	for _, doc := range docs {
		faces = append(faces, r.makeFace(doc))
	}

	return faces, nil
}

func (r *facesRepository) makeFace(doc RegisteredFaceDocument) entity.RegisteredFace {
	return entity.RegisteredFace{
		ID:        doc.ID,
		Face:      doc.Face,
		Name:      doc.Name,
		Age:       doc.Age,
		Code:      doc.Code,
		Email:     doc.Email,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
