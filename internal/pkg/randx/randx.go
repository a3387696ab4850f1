/*
Package randx generates identifiers: UUIDv4 record ids and random object keys.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"path"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// objectSuffixLength is the length of the random Base62 tail of an object key.
	objectSuffixLength = 8
)

// ID generates a standard UUID v4 string used as the primary key of users and messages.
func ID() string {
	return uuid.New().String()
}

// Base62 returns n characters drawn from Base62Chars with crypto/rand.
func Base62(n int) (string, error) {
	result := make([]byte, n)

	for i := 0; i < n; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// ObjectKey builds an unguessable storage key "<prefix>/<owner>/<uuid><suffix>.<ext>".
func ObjectKey(prefix, owner, ext string) (string, error) {
	suffix, err := Base62(objectSuffixLength)
	if err != nil {
		return "", err
	}

	return path.Join(prefix, owner, uuid.New().String()+suffix+"."+ext), nil
}
