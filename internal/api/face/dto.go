package face

import "time"

type CreateFaceRequest struct {
	Face string `json:"face"`
	Name string `json:"name" conform:"trim" validate:"max=256"`
	Age  *int   `json:"age" validate:"omitempty,min=0,max=150"`
	Code string `json:"code" conform:"trim"`
}

type FaceResponse struct {
	ID        string    `json:"id"`
	Face      string    `json:"face"`
	Name      string    `json:"name"`
	Age       *int      `json:"age,omitempty"`
	Code      string    `json:"code,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type RegisterFaceRequest struct {
	Image string `json:"image"`
	Name  string `json:"name" conform:"trim" validate:"max=256"`
	Email string `json:"email" conform:"trim,lower" validate:"omitempty,email"`
	Store string `json:"store" conform:"trim" validate:"omitempty,oneof=0 1"`
}

type RegisteredUser struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	FaceID         string    `json:"faceId"`
	LuxandPersonID string    `json:"luxandPersonId"`
	RegisteredAt   time.Time `json:"registeredAt"`
}

type RegisterFaceResponse struct {
	Success bool           `json:"success"`
	User    RegisteredUser `json:"user"`
	Message string         `json:"message"`
}

type RemoveFaceRequest struct {
	LuxandPersonID string `json:"luxandPersonId" conform:"trim"`
}

type RemoveFaceResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	LuxandPersonID string `json:"luxandPersonId"`
}
