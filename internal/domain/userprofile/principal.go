package userprofile

// Principal is the authenticated identity resolved from a request token.
type Principal struct {
	UserID     string
	TelegramID int64
	Username   string
}
