package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	UsernameEnv = "JWGLXT_USERNAME"
	PasswordEnv = "JWGLXT_PASSWORD"
)

type Credentials struct {
	Username string
	Password string
}

// Resolve picks the username and password from the "username" and
// "password" flags when they were set explicitly, falling back to the
// environment. Missing values are left empty; the portal rejects them later.
func Resolve(flags *pflag.FlagSet) Credentials {
	return Credentials{
		Username: lookup(flags, "username", UsernameEnv),
		Password: lookup(flags, "password", PasswordEnv),
	}
}

func lookup(flags *pflag.FlagSet, name, env string) string {
	if flags != nil {
		if f := flags.Lookup(name); f != nil && f.Changed {
			return f.Value.String()
		}
	}
	return os.Getenv(env)
}

// LoadDotEnv exports the variables of a dotenv file. Variables that are
// already set are kept, and a missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
