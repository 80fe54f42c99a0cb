package models

// TokenInfo describes an issued access token. Despite their names, ExpiresIn
// and RefreshTokenExpiresIn are absolute Unix timestamps in seconds; zero
// means unknown.
type TokenInfo struct {
	AccessToken           string
	ExpiresIn             int64
	RefreshTokenExpiresIn int64
}

// LoginResult is what sign-in and sign-up return.
type LoginResult struct {
	User      *User
	TokenInfo *TokenInfo
}

// RefreshStatus is the server verdict on a refresh request.
type RefreshStatus string

const (
	RefreshOK                    RefreshStatus = "ok"
	RefreshTokenAlreadyRefreshed RefreshStatus = "tokenAlreadyRefreshed"
	RefreshTokenExpired          RefreshStatus = "refreshTokenExpired"
)

// RefreshResult carries a new token when Status is RefreshOK.
type RefreshResult struct {
	Status    RefreshStatus
	TokenInfo *TokenInfo
}
