package faceRepository

import (
	"FaceAttendance/internal/api/face"
	"FaceAttendance/internal/entity"
	contextPkg "FaceAttendance/pkg/context"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type RegisteredFaceDB struct {
	ID        string         `db:"id"`
	Face      string         `db:"face"`
	Name      string         `db:"name"`
	Age       sql.NullInt64  `db:"age"`
	Code      sql.NullString `db:"code"`
	Email     sql.NullString `db:"email"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func (r *facesSQLRepository) CreateFace(ctx context.Context, registered entity.RegisteredFace) error {
	requestID := contextPkg.GetRequestID(ctx)

	var age sql.NullInt64
	if registered.Age != nil {
		age = sql.NullInt64{Int64: int64(*registered.Age), Valid: true}
	}

	argsKV := map[string]interface{}{
		"id":         registered.ID,
		"face":       registered.Face,
		"name":       registered.Name,
		"age":        age,
		"code":       sql.NullString{String: registered.Code, Valid: registered.Code != ""},
		"email":      sql.NullString{String: registered.Email, Valid: registered.Email != ""},
		"created_at": registered.CreatedAt,
		"updated_at": registered.UpdatedAt,
	}

	query, args, err := sqlx.Named(queryCreateFace, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateFace")
		return err
	}
	query = r.q.Rebind(query)

	if _, err = r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating registered face")
		return err
	}

	return nil
}

func (r *facesSQLRepository) GetFaceByID(ctx context.Context, id string) (entity.RegisteredFace, error) {
	return r.getOne(ctx, queryGetFaceByID, map[string]interface{}{"id": id}, "GetFaceByID")
}

func (r *facesSQLRepository) GetFaceByCode(ctx context.Context, code string) (entity.RegisteredFace, error) {
	return r.getOne(ctx, queryGetFaceByCode, map[string]interface{}{"code": code}, "GetFaceByCode")
}

func (r *facesSQLRepository) getOne(ctx context.Context, namedQuery string, argsKV map[string]interface{}, operation string) (entity.RegisteredFace, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var row RegisteredFaceDB

	query, args, err := sqlx.Named(namedQuery, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(operation + " named query preparation err")
		return entity.RegisteredFace{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn(operation + " no rows found")
			return entity.RegisteredFace{}, face.ErrFaceNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(operation + " execution err")
		return entity.RegisteredFace{}, err
	}

	return r.makeFace(row), nil
}

func (r *facesSQLRepository) GetFacesByIDs(ctx context.Context, ids []string) ([]entity.RegisteredFace, error) {
	requestID := contextPkg.GetRequestID(ctx)
	if len(ids) == 0 {
		return []entity.RegisteredFace{}, nil
	}

	query, args, err := sqlx.In(queryGetFacesByIDs, ids)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetFacesByIDs query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	var rows []RegisteredFaceDB
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetFacesByIDs execution err")
		return nil, err
	}

	return r.makeFaces(rows), nil
}

func (r *facesSQLRepository) ListFaces(ctx context.Context) ([]entity.RegisteredFace, error) {
	requestID := contextPkg.GetRequestID(ctx)

	var rows []RegisteredFaceDB
	if err := r.q.SelectContext(ctx, &rows, queryListFaces); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListFaces execution err")
		return nil, err
	}

	return r.makeFaces(rows), nil
}

func (r *facesSQLRepository) makeFaces(rows []RegisteredFaceDB) []entity.RegisteredFace {
	faces := make([]entity.RegisteredFace, 0, len(rows))
	for _, row := range rows {
		faces = append(faces, r.makeFace(row))
	}
	return faces
}

func (r *facesSQLRepository) makeFace(row RegisteredFaceDB) entity.RegisteredFace {
	var age *int
	if row.Age.Valid {
		v := int(row.Age.Int64)
		age = &v
	}

	return entity.RegisteredFace{
		ID:        row.ID,
		Face:      row.Face,
		Name:      row.Name,
		Age:       age,
		Code:      row.Code.String,
		Email:     row.Email.String,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
