package model

// UserRole is carried in the access token. Accounts live in the identity
// service; this backend only sees the id and role.
type UserRole string

const (
	Member UserRole = "member"
	Admin  UserRole = "admin"
)
