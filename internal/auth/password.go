package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/GehirnInc/crypt/sha256_crypt"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Hash schemes a PasswordHasher can produce. All of them are always accepted by Verify.
const (
	SchemeBcrypt      = "bcrypt"
	SchemeSHA256Crypt = "sha256_crypt"
	SchemeArgon2id    = "argon2id"
)

// sha256-crypt defaults match passlib so hashes carried over from older
// deployments need no rehash.
const (
	defaultSHA256Rounds = 535000
	sha256SaltLen       = 16
	cryptAlphabet       = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// ErrPasswordTooLong is returned by Hash when bcrypt would silently truncate the input.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

const maxBcryptPasswordLen = 72

type argon2Params struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
	saltLen int
}

// PasswordHasher salts and digests passwords with a preferred scheme and
// verifies hashes of any known scheme by looking at their encoded prefix.
type PasswordHasher struct {
	scheme       string
	bcryptCost   int
	sha256Rounds int
	argon        argon2Params
}

type HasherOption func(*PasswordHasher)

// WithBcryptCost overrides the bcrypt work factor. Out-of-range values are ignored.
func WithBcryptCost(cost int) HasherOption {
	return func(h *PasswordHasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.bcryptCost = cost
		}
	}
}

// WithSHA256Rounds overrides the sha256-crypt round count. Values outside
// 1000..999999999 are ignored.
func WithSHA256Rounds(rounds int) HasherOption {
	return func(h *PasswordHasher) {
		if rounds >= sha256_crypt.RoundsMin && rounds <= sha256_crypt.RoundsMax {
			h.sha256Rounds = rounds
		}
	}
}

// WithArgon2Params overrides the argon2id iterations, memory (KiB) and parallelism.
func WithArgon2Params(time, memoryKiB uint32, threads uint8) HasherOption {
	return func(h *PasswordHasher) {
		if time > 0 {
			h.argon.time = time
		}
		if memoryKiB > 0 {
			h.argon.memory = memoryKiB
		}
		if threads > 0 {
			h.argon.threads = threads
		}
	}
}

func NewPasswordHasher(scheme string, opts ...HasherOption) (*PasswordHasher, error) {
	switch scheme {
	case SchemeBcrypt, SchemeSHA256Crypt, SchemeArgon2id:
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
	h := &PasswordHasher{
		scheme:       scheme,
		bcryptCost:   bcrypt.DefaultCost,
		sha256Rounds: defaultSHA256Rounds,
		argon: argon2Params{
			time:    1,
			memory:  64 * 1024,
			threads: 4,
			keyLen:  32,
			saltLen: 16,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Scheme reports the scheme used for new hashes.
func (h *PasswordHasher) Scheme() string { return h.scheme }

func (h *PasswordHasher) Hash(plain string) (string, error) {
	switch h.scheme {
	case SchemeArgon2id:
		return h.hashArgon2(plain)
	case SchemeSHA256Crypt:
		return h.hashSHA256(plain)
	}
	if len(plain) > maxBcryptPasswordLen {
		return "", ErrPasswordTooLong
	}
	out, err := bcrypt.GenerateFromPassword([]byte(plain), h.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(out), nil
}

func (h *PasswordHasher) hashSHA256(plain string) (string, error) {
	salt := make([]byte, sha256SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("sha256-crypt salt: %w", err)
	}
	for i, b := range salt {
		salt[i] = cryptAlphabet[int(b)%len(cryptAlphabet)]
	}
	setting := fmt.Sprintf("%srounds=%d$%s", sha256_crypt.MagicPrefix, h.sha256Rounds, salt)
	out, err := sha256_crypt.New().Generate([]byte(plain), []byte(setting))
	if err != nil {
		return "", fmt.Errorf("sha256-crypt: %w", err)
	}
	return out, nil
}

func (h *PasswordHasher) hashArgon2(plain string) (string, error) {
	salt := make([]byte, h.argon.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("argon2 salt: %w", err)
	}
	key := argon2.IDKey([]byte(plain), salt, h.argon.time, h.argon.memory, h.argon.threads, h.argon.keyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.argon.memory, h.argon.time, h.argon.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plain matches hash. Unknown or malformed encodings never match.
func (h *PasswordHasher) Verify(plain, hash string) bool {
	switch schemeOf(hash) {
	case SchemeBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
	case SchemeSHA256Crypt:
		return sha256_crypt.New().Verify(hash, []byte(plain)) == nil
	case SchemeArgon2id:
		p, salt, want, err := decodeArgon2(hash)
		if err != nil {
			return false
		}
		got := argon2.IDKey([]byte(plain), salt, p.time, p.memory, p.threads, uint32(len(want)))
		return subtle.ConstantTimeCompare(got, want) == 1
	default:
		return false
	}
}

// NeedsRehash reports whether hash was produced by a different scheme or
// with weaker parameters than the hasher currently uses.
func (h *PasswordHasher) NeedsRehash(hash string) bool {
	if schemeOf(hash) != h.scheme {
		return true
	}
	switch h.scheme {
	case SchemeBcrypt:
		cost, err := bcrypt.Cost([]byte(hash))
		return err != nil || cost < h.bcryptCost
	case SchemeSHA256Crypt:
		rounds, err := sha256_crypt.New().Cost(hash)
		return err != nil || rounds < h.sha256Rounds
	case SchemeArgon2id:
		p, _, _, err := decodeArgon2(hash)
		return err != nil || p.time < h.argon.time || p.memory < h.argon.memory
	}
	return false
}

func schemeOf(hash string) string {
	switch {
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return SchemeBcrypt
	case strings.HasPrefix(hash, sha256_crypt.MagicPrefix):
		return SchemeSHA256Crypt
	case strings.HasPrefix(hash, "$argon2id$"):
		return SchemeArgon2id
	default:
		return ""
	}
}

// decodeArgon2 parses $argon2id$v=19$m=MEMORY,t=TIME,p=THREADS$SALT$KEY.
func decodeArgon2(encoded string) (argon2Params, []byte, []byte, error) {
	var p argon2Params
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, errors.New("argon2: bad format")
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, errors.New("argon2: unsupported version")
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, fmt.Errorf("argon2 params: %w", err)
	}
	if p.time == 0 || p.threads == 0 {
		return p, nil, nil, errors.New("argon2: zero params")
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("argon2 salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, errors.New("argon2: bad key")
	}
	return p, salt, key, nil
}
