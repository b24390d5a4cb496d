// internal/utils/crypto.go
package utils

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const phpassItoa64 = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// CheckWordPressPassword verifies password against a hash stored in the
// WordPress users table. Supported formats: "$wp" prefixed bcrypt over an
// HMAC-SHA384 pre-hash, plain bcrypt, phpass portable hashes ($P$, $H$) and
// the legacy unsalted MD5 hex digest.
func CheckWordPressPassword(password, hash string) bool {
	switch {
	case strings.HasPrefix(hash, "$wp"):
		mac := hmac.New(sha512.New384, []byte("wp-sha384"))
		mac.Write([]byte(strings.TrimSpace(password)))
		prehash := base64.StdEncoding.EncodeToString(mac.Sum(nil))
		return bcrypt.CompareHashAndPassword([]byte(hash[3:]), []byte(prehash)) == nil

	case strings.HasPrefix(hash, "$2"):
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil

	case strings.HasPrefix(hash, "$P$"), strings.HasPrefix(hash, "$H$"):
		computed := phpassCrypt(password, hash)
		return computed != "" && ConstantTimeEqual(computed, hash)

	case len(hash) == 32:
		sum := md5.Sum([]byte(password))
		return ConstantTimeEqual(hex.EncodeToString(sum[:]), strings.ToLower(hash))
	}
	return false
}

// ConstantTimeEqual compares two strings without leaking where they differ.
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func phpassCrypt(password, setting string) string {
	if len(setting) < 12 {
		return ""
	}

	countLog2 := strings.IndexByte(phpassItoa64, setting[3])
	if countLog2 < 7 || countLog2 > 30 {
		return ""
	}
	count := 1 << countLog2
	salt := setting[4:12]

	sum := md5.Sum([]byte(salt + password))
	hash := sum[:]
	for ; count > 0; count-- {
		sum = md5.Sum(append(hash, password...))
		hash = sum[:]
	}

	return setting[:12] + phpassEncode64(hash, 16)
}

func phpassEncode64(input []byte, count int) string {
	var out strings.Builder
	i := 0
	for i < count {
		value := int(input[i])
		i++
		out.WriteByte(phpassItoa64[value&0x3f])
		if i < count {
			value |= int(input[i]) << 8
		}
		out.WriteByte(phpassItoa64[(value>>6)&0x3f])
		if i >= count {
			break
		}
		i++
		if i < count {
			value |= int(input[i]) << 16
		}
		out.WriteByte(phpassItoa64[(value>>12)&0x3f])
		if i >= count {
			break
		}
		i++
		out.WriteByte(phpassItoa64[(value>>18)&0x3f])
	}
	return out.String()
}
