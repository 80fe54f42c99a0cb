package session

// Persistence keys, shared with sessions written by earlier clients.
const (
	KeyUser                  = "auth__user"
	KeyToken                 = "auth__token"
	KeyTokenExpiresAt        = "auth__tokenExpiresIn"
	KeyRefreshTokenExpiresAt = "auth__refreshTokenExpiresIn"
)
