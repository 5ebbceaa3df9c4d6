package room

type CreateRoomRequest struct {
	Block      string `json:"block" binding:"required" validate:"required"`
	RoomNumber string `json:"room_number" binding:"required" validate:"required"`
	Floor      int    `json:"floor"`
	Capacity   int    `json:"capacity" binding:"required" validate:"required,gte=1"`
	YearlyRent int    `json:"yearly_rent" validate:"gte=0"`
}

type UpdateRentRequest struct {
	YearlyRent int `json:"yearly_rent" binding:"required" validate:"required,gte=0"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type ListRoomsQuery struct {
	Block      string `form:"block"`
	Status     string `form:"status"`
	ActiveOnly bool   `form:"active_only"`
}
