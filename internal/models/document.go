package models

// Admin is a bootstrap operator identity. Admins are seeded when the
// document is initialized and are not self-service-registrable.
type Admin struct {
	Username     string `json:"username" bson:"username"`
	PasswordHash string `json:"password_hash" bson:"password_hash"`
}

// Assignment maps a vehicle number to the ordered list of orders
// clustered to that vehicle in the most recent batch run.
type Assignment map[string][]Order

// Document is the root aggregate of persisted application state.
// All reads and writes go through the store as whole-document operations;
// Version is bumped on every committed mutation and backs the optimistic
// concurrency check in stores that support it.
type Document struct {
	Version     int64      `json:"version" bson:"version"`
	Admins      []Admin    `json:"admins" bson:"admins"`
	Drivers     []Driver   `json:"drivers" bson:"drivers"`
	Assignments Assignment `json:"assignments" bson:"assignments"`
}
