package handler

type listRequest struct {
	PlayerID string `json:"playerId" validate:"required,uuid"`
	Price    int64  `json:"price"`
}

type unlistRequest struct {
	PlayerID string `json:"playerId" validate:"required,uuid"`
}

type updatePriceRequest struct {
	PlayerID string `json:"playerId" validate:"required,uuid"`
	NewPrice int64  `json:"newPrice"`
}

type buyRequest struct {
	PlayerID string `json:"playerId" validate:"required,uuid"`
}

type renameRequest struct {
	TeamName string `json:"teamName" validate:"required"`
}
