package driver

import "swift-dispatch/internal/common"

type RegisterRequest struct {
	Name        string          `json:"name" binding:"required"`
	VehicleType VehicleType     `json:"vehicle_type" binding:"required"`
	Location    common.Location `json:"location"`
}

type UpdateRequest struct {
	Name        *string      `json:"name"`
	VehicleType *VehicleType `json:"vehicle_type"`
	Rating      *float64     `json:"rating"`
}

type SetStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

type LocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Response struct {
	Driver *Driver `json:"driver"`
}
