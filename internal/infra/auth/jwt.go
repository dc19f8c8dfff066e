package auth

import (
	"errors"
	"fmt"
	"time"

	"catalog/internal/domain/model"
	"catalog/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

// HS256のaccess/refreshトークン
type JWTIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewJWTIssuer(secret string, accessTTL, refreshTTL time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

type claims struct {
	Staff bool   `json:"staff"`
	TV    int    `json:"tv"`
	Typ   string `json:"typ"`
	jwt.RegisteredClaims
}

func (j *JWTIssuer) Issue(user model.User, kind string, now time.Time) (string, time.Time, error) {
	ttl := j.accessTTL
	if kind == usecase.TokenKindRefresh {
		ttl = j.refreshTTL
	}
	exp := now.Add(ttl)

	c := claims{
		Staff: user.IsStaff(),
		TV:    user.TokenVersion,
		Typ:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (j *JWTIssuer) Parse(raw string) (usecase.TokenClaims, error) {
	var c claims
	token, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		//HS256以外は拒否
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return j.secret, nil
	})
	if err != nil || !token.Valid {
		return usecase.TokenClaims{}, ErrInvalidToken
	}

	var uid int64
	if _, err := fmt.Sscan(c.Subject, &uid); err != nil || uid <= 0 {
		return usecase.TokenClaims{}, ErrInvalidToken
	}

	out := usecase.TokenClaims{
		UserID:       uid,
		IsStaff:      c.Staff,
		TokenVersion: c.TV,
		Kind:         c.Typ,
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out, nil
}
