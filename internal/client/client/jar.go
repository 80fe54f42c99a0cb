package client

import (
	"context"

	"github.com/dmitrijs2005/gophsession/internal/client/repositories/metadata"
)

// RefreshTokenKey is the metadata key holding the refresh token.
const RefreshTokenKey = "transport__refresh_token"

// CookieJar keeps the opaque refresh token between calls and restarts, the
// way a browser keeps an HTTP-only cookie. The session core never reads it.
type CookieJar interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
}

// MetadataJar stores the refresh token in a metadata repository.
type MetadataJar struct {
	repo metadata.Repository
}

func NewMetadataJar(repo metadata.Repository) *MetadataJar {
	return &MetadataJar{repo: repo}
}

func (j *MetadataJar) Get(ctx context.Context) (string, error) {
	v, err := j.repo.Get(ctx, RefreshTokenKey)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// Set stores token. An empty token removes the key.
func (j *MetadataJar) Set(ctx context.Context, token string) error {
	if token == "" {
		return j.repo.Delete(ctx, RefreshTokenKey)
	}
	return j.repo.Set(ctx, RefreshTokenKey, []byte(token))
}
