package scrape

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// The login page is scraped by plain substring search. Both markers break as
// soon as the portal changes its templates.
const (
	csrfMarker    = `name="csrftoken" value="`
	successMarker = "修改密码"
)

type publicKey struct {
	Modulus  *string `json:"modulus"`
	Exponent *string `json:"exponent"`
}

// Login signs in with the session's credentials. It succeeds only if the
// page returned after posting the form shows the "change password" menu,
// whatever the HTTP status.
func (s *Session) Login() error {
	token, err := s.csrfToken()
	if err != nil {
		return err
	}
	key, err := s.publicKey()
	if err != nil {
		return err
	}
	mm, err := EncryptPassword(s.creds.Password, *key.Modulus, *key.Exponent)
	if err != nil {
		return err
	}

	// The portal's form validation expects mm twice.
	form := encodeForm(
		field{"csrftoken", token},
		field{"yhm", s.creds.Username},
		field{"mm", mm},
		field{"mm", mm},
	)
	body, err := s.fetch(http.MethodPost, loginPath, form)
	if err != nil {
		return err
	}
	if !bytes.Contains(body, []byte(successMarker)) {
		if tip := loginTip(body); tip != "" {
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, tip)
		}
		return ErrInvalidCredentials
	}
	return nil
}

func (s *Session) csrfToken() (string, error) {
	body, err := s.fetch(http.MethodGet, loginPath, "")
	if err != nil {
		return "", err
	}
	return extractToken(string(body))
}

func extractToken(page string) (string, error) {
	i := strings.Index(page, csrfMarker)
	if i < 0 {
		return "", ErrTokenNotFound
	}
	rest := page[i+len(csrfMarker):]
	if end := strings.IndexByte(rest, '"'); end >= 0 {
		rest = rest[:end]
	}
	return rest, nil
}

func (s *Session) publicKey() (publicKey, error) {
	var key publicKey
	body, err := s.fetch(http.MethodGet, publicKeyPath, "")
	if err != nil {
		return key, err
	}
	if err := json.Unmarshal(body, &key); err != nil {
		return key, fmt.Errorf("%w: %v", ErrKeyFieldMissing, err)
	}
	if key.Modulus == nil {
		return key, fmt.Errorf("%w: modulus", ErrKeyFieldMissing)
	}
	if key.Exponent == nil {
		return key, fmt.Errorf("%w: exponent", ErrKeyFieldMissing)
	}
	return key, nil
}

// loginTip returns the message the portal shows next to a rejected login.
func loginTip(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("#tips").First().Text())
}
