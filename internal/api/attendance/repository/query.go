package attendanceRepository

const (
	queryCreateEvent = `
		INSERT INTO attendance_events (
			id,
			registered_face_id,
			room_id,
			note,
			checkin_time,
			is_check_out,
			snapshot_url,
			created_at,
			updated_at
		) VALUES (
			:id,
			:registered_face_id,
			:room_id,
			:note,
			:checkin_time,
			:is_check_out,
			:snapshot_url,
			:created_at,
			:updated_at
		)
	`

	queryListEvents = `
		SELECT id, registered_face_id, room_id, note, checkin_time, is_check_out, snapshot_url, created_at, updated_at
		FROM attendance_events
		ORDER BY checkin_time DESC
		LIMIT :limit
	`

	queryListEventsByRoom = `
		SELECT id, registered_face_id, room_id, note, checkin_time, is_check_out, snapshot_url, created_at, updated_at
		FROM attendance_events
		WHERE room_id = :room_id
			OR (COALESCE(room_id, '') = '' AND note ILIKE :room_pattern)
		ORDER BY checkin_time DESC
		LIMIT :limit
	`
)
