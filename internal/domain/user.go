package domain

// User represents an authenticated user of the system. CreationDate is epoch
// milliseconds, matching how every other date in the schema is stored.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreationDate int64
}
