package validation

const (
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt input limit
)
