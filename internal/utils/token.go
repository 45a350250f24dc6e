package utils // package utils provides helper functions for token and code generation

import (
    "crypto/rand"   // secure random number generation
    "encoding/hex"  // hex encoding for session tokens
    "math/big"      // uniform random integers for OTP codes
    "time"          // expiry computation

    "golang.org/x/crypto/bcrypt" // bcrypt hashing for OTP codes at rest
)

// SessionToken represents an opaque bearer credential issued after a
// successful OTP verification.  The Raw field is returned to the client and
// stored verbatim in the sessions table; Exp records when it stops being
// accepted.  Tokens are 64 hex characters (32 random bytes) and carry no
// embedded claims, so validity is always decided against the database.
type SessionToken struct {
    Raw string    // raw token string returned to the client
    Exp time.Time // UTC expiration time
}

// NewSessionToken builds a session token valid for ttlDays days.  If the
// random number generator fails, an error is returned and no token is issued.
func NewSessionToken(ttlDays int) (SessionToken, error) {
    raw, err := randomHex(32) // 32 bytes -> 64 hex chars
    if err != nil {
        return SessionToken{}, err
    }
    return SessionToken{
        Raw: raw,
        Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
    }, nil
}

// NewOTPCode returns a 6-digit numeric one-time code in [100000, 999999].
// crypto/rand is used so codes are not predictable from earlier ones.
func NewOTPCode() (string, error) {
    // Draw uniformly from [0, 900000) and shift into the 6-digit range.
    n, err := rand.Int(rand.Reader, big.NewInt(900000))
    if err != nil {
        return "", err
    }
    code := n.Int64() + 100000
    return big.NewInt(code).String(), nil
}

// HashOTPCode returns the bcrypt hash of a one-time code.  Only the hash is
// stored in otp_verifications, so a leaked row cannot be replayed.
func HashOTPCode(code string, cost int) (string, error) {
    b, err := bcrypt.GenerateFromPassword([]byte(code), cost)
    if err != nil {
        return "", err
    }
    return string(b), nil
}

// VerifyOTPCode safely compares a stored bcrypt hash and a submitted code.
func VerifyOTPCode(hash, code string) bool {
    return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
