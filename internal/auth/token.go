package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrEmptyToken = errors.New("token file is empty")

// TokenProvider supplies the bearer token attached to API calls. An empty token means
// the call is made anonymously.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Static always returns the same token.
type Static string

func (s Static) Token(_ context.Context) (string, error) {
	return string(s), nil
}

// File reads the token from a file on every call, so an external login tool can
// rotate it without restarting the process.
type File struct {
	Path string
}

func (f File) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file %s: %w", f.Path, err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyToken, f.Path)
	}

	return strings.TrimPrefix(token, "Bearer "), nil
}

// NewProvider picks the file provider when a path is configured, the static one otherwise.
func NewProvider(token, tokenFile string) TokenProvider {
	if tokenFile != "" {
		return File{Path: tokenFile}
	}

	return Static(token)
}
