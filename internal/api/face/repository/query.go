package faceRepository

const (
	queryCreateFace = `
		INSERT INTO registered_faces (
			id,
			face,
			name,
			age,
			code,
			email,
			created_at,
			updated_at
		) VALUES (
			:id,
			:face,
			:name,
			:age,
			:code,
			:email,
			:created_at,
			:updated_at
		)
	`

	queryGetFaceByID = `
		SELECT id, face, name, age, code, email, created_at, updated_at
		FROM registered_faces
		WHERE id = :id
	`

	queryGetFaceByCode = `
		SELECT id, face, name, age, code, email, created_at, updated_at
		FROM registered_faces
		WHERE code = :code
		ORDER BY created_at DESC
		LIMIT 1
	`

	queryGetFacesByIDs = `
		SELECT id, '' AS face, name, age, code, email, created_at, updated_at
		FROM registered_faces
		WHERE id IN (?)
	`

	queryListFaces = `
		SELECT id, face, name, age, code, email, created_at, updated_at
		FROM registered_faces
		ORDER BY created_at DESC
	`
)
