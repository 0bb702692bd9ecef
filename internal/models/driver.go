package models

// Driver represents a registered vehicle and the person driving it.
// VehicleNo is stored normalized (uppercased, trimmed) and acts as the
// primary key across the whole system.
type Driver struct {
	VehicleNo string  `json:"vehicle_no" bson:"vehicle_no"`
	Company   string  `json:"company" bson:"company"`
	Model     string  `json:"model" bson:"model"`
	RangeKm   float64 `json:"range" bson:"range"`
}

// RegisterRequest represents a driver self-registration request.
type RegisterRequest struct {
	VehicleNo string  `json:"vehicle_no"`
	Company   string  `json:"company"`
	Model     string  `json:"model"`
	RangeKm   float64 `json:"range"`
}
