// Package sharetoken issues and validates signed links to exported reports.
package sharetoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "kinfolk/pkg/domain-errors"
)

const (
	DefaultIssuer   = "kinfolk"
	DefaultAudience = "kinfolk-reports"
)

// Claims name one export. The token is the only credential a share link carries.
type Claims struct {
	ExportID string `json:"export_id"`
	Format   string `json:"format"`
	jwt.RegisteredClaims
}

type Signer struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewSigner(signingKey, issuer, audience string) *Signer {
	return &Signer{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// Issue signs an HS256 token for exportID valid until expiresAt.
func (s *Signer) Issue(exportID, format string, issuedAt, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ExportID: exportID,
		Format:   format,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			Subject:   exportID,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// Validate checks signature, issuer, audience and expiry.
func (s *Signer) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "share token is required")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "share link has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid share token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ExportID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid share token")
	}
	return claims, nil
}
