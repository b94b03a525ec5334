package scrape

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const DefaultBaseURL = "https://jwglxt.haut.edu.cn/jwglxt"

const (
	loginPath     = "/xtgl/login_slogin.html"
	publicKeyPath = "/xtgl/login_getPublicKey.html"
	schedulePath  = "/kbcx/xskbcx_cxXsKb.html?gnmkdm=N2151"
)

var (
	ErrTokenNotFound      = errors.New("csrftoken not found")
	ErrKeyFieldMissing    = errors.New("public key field missing")
	ErrEncryption         = errors.New("password encryption failed")
	ErrInvalidCredentials = errors.New("wrong password or username")
	ErrInvalidTerm        = errors.New("term must be 1 or 2")
	ErrFetch              = errors.New("request failed")
)

// TermCode maps a term number to the xqm value the portal expects.
func TermCode(term int) (string, error) {
	switch term {
	case 1:
		return "3", nil
	case 2:
		return "12", nil
	default:
		return "", fmt.Errorf("%w: got %d", ErrInvalidTerm, term)
	}
}

type field struct {
	key, value string
}

// encodeForm keeps field order and repeated keys, which url.Values does not.
func encodeForm(fields ...field) string {
	pairs := make([]string, len(fields))
	for i, f := range fields {
		pairs[i] = url.QueryEscape(f.key) + "=" + url.QueryEscape(f.value)
	}
	return strings.Join(pairs, "&")
}
