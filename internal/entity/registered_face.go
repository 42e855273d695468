package entity

import "time"

type RegisteredFace struct {
	ID        string
	Face      string
	Name      string
	Age       *int
	Code      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
