package subscription

import (
	"crypto/sha1"
	"encoding/base64"
	"time"

	"github.com/elgs/gostrgen"
	"github.com/gofrs/uuid"
	"github.com/juju/errors"
)

const createdFormat = "2006-01-02T15:04:05.000Z"

// securityToken is the WS-Security UsernameToken material for one request.
// Each request signs a fresh nonce: digest = SHA1(nonce + created + password),
// with nonce and digest base64-encoded into the header.
type securityToken struct {
	TokenID        string
	Username       string
	PasswordDigest string
	Nonce          string
	Created        string
}

func newSecurityToken(username, password string) (*securityToken, error) {
	rawNonce, err := gostrgen.RandGen(22, gostrgen.LowerUpperDigit, "", "")
	if err != nil {
		return nil, errors.Annotate(err, "generating nonce")
	}

	tokenID, err := uuid.NewV4()
	if err != nil {
		return nil, errors.Annotate(err, "generating token id")
	}

	created := time.Now().UTC().Format(createdFormat)

	h := sha1.New()
	h.Write([]byte(rawNonce))
	h.Write([]byte(created))
	h.Write([]byte(password))

	return &securityToken{
		TokenID:        tokenID.String(),
		Username:       username,
		PasswordDigest: base64.StdEncoding.EncodeToString(h.Sum(nil)),
		Nonce:          base64.StdEncoding.EncodeToString([]byte(rawNonce)),
		Created:        created,
	}, nil
}
