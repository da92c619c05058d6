package models

// OwnedEntity is implemented by every record that belongs to exactly one user.
// The store uses it to scope queries and to force the owner on create.
type OwnedEntity interface {
	SetOwnerID(userID string)
	GetEntityType() string
}
