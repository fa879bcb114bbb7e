package utils

import (
	"strconv"
	"time"

	"github.com/gorilla/securecookie"
)

// IntentTokens signs per-entity tokens such as "delete user 12", bound to the
// caller's session so a token cannot be replayed by someone else.
type IntentTokens struct {
	codec *securecookie.SecureCookie
}

func NewIntentTokens(hashKey []byte, ttl time.Duration) *IntentTokens {
	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(int(ttl.Seconds()))
	return &IntentTokens{codec: codec}
}

func (t *IntentTokens) Generate(intent string, id int64, session string) string {
	token, err := t.codec.Encode(intent, intentValue(id, session))
	if err != nil {
		return ""
	}
	return token
}

func (t *IntentTokens) Valid(intent string, id int64, session, token string) bool {
	if token == "" {
		return false
	}
	var got string
	if err := t.codec.Decode(intent, token, &got); err != nil {
		return false
	}
	return got == intentValue(id, session)
}

func intentValue(id int64, session string) string {
	return strconv.FormatInt(id, 10) + ":" + session
}
