package scrape

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
)

// EncryptPassword encrypts password with the RSA key given as base64 encoded
// big-endian modulus and exponent, using PKCS#1 v1.5 padding, and returns the
// base64 ciphertext.
func EncryptPassword(password, modulus, exponent string) (string, error) {
	n, err := base64.StdEncoding.DecodeString(modulus)
	if err != nil {
		return "", fmt.Errorf("%w: modulus: %v", ErrEncryption, err)
	}
	e, err := base64.StdEncoding.DecodeString(exponent)
	if err != nil {
		return "", fmt.Errorf("%w: exponent: %v", ErrEncryption, err)
	}

	exp := new(big.Int).SetBytes(e)
	if !exp.IsInt64() || exp.Int64() > 1<<31-1 {
		return "", fmt.Errorf("%w: exponent too large", ErrEncryption)
	}
	key := &rsa.PublicKey{
		N: new(big.Int).SetBytes(n),
		E: int(exp.Int64()),
	}

	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, key, []byte(password))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
