package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/server/models"
)

// UserLookup resolves a subject id to its user record. It returns
// common.ErrorNotFound when the user does not exist.
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// SessionGate turns a session token into an authenticated subject.
type SessionGate struct {
	codec *TokenCodec
	users UserLookup
}

func NewSessionGate(codec *TokenCodec, users UserLookup) *SessionGate {
	return &SessionGate{codec: codec, users: users}
}

// Authenticate validates token and resolves its subject.
//
//	""                    -> common.ErrMissingToken
//	bad signature/payload -> common.ErrInvalidToken
//	past expiry           -> common.ErrTokenExpired
//	unknown subject       -> common.ErrInvalidToken
//
// Any other lookup error is returned unchanged.
func (g *SessionGate) Authenticate(ctx context.Context, token string) (*models.Subject, error) {
	if token == "" {
		return nil, common.ErrMissingToken
	}

	claims, err := g.codec.Decode(token)
	if err != nil {
		return nil, err
	}

	if g.codec.IsExpired(claims) {
		return nil, common.ErrTokenExpired
	}

	user, err := g.users.GetUserByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: subject %d no longer exists", common.ErrInvalidToken, claims.ID)
		}
		return nil, err
	}

	return user.Subject(), nil
}
