package service

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const reportTokenIssuer = "creator-growth"

// ReportTokenService firma links de descarga de reportes (HS256, subject = report id).
type ReportTokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type ReportClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func NewReportTokenService(secret string, ttl time.Duration) *ReportTokenService {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &ReportTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: reportTokenIssuer,
		now:    time.Now,
	}
}

// TTL es la vida del link; el store usa el mismo valor.
func (s *ReportTokenService) TTL() time.Duration {
	return s.ttl
}

// Issue devuelve el token firmado y su vencimiento.
func (s *ReportTokenService) Issue(reportID, userID string) (string, time.Time, error) {
	if len(s.secret) == 0 || strings.TrimSpace(reportID) == "" {
		return "", time.Time{}, ErrReportTokenInvalid
	}
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	claims := ReportClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   reportID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign report token: %w", err)
	}
	return signed, exp, nil
}

// Parse valida firma, issuer y vencimiento; cualquier falla es ErrReportTokenInvalid.
func (s *ReportTokenService) Parse(token string) (ReportClaims, error) {
	if len(s.secret) == 0 || strings.TrimSpace(token) == "" {
		return ReportClaims{}, ErrReportTokenInvalid
	}
	var claims ReportClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ReportClaims{}, fmt.Errorf("%w: expired", ErrReportTokenInvalid)
		}
		return ReportClaims{}, ErrReportTokenInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return ReportClaims{}, ErrReportTokenInvalid
	}
	return claims, nil
}

// DownloadURL arma el link público /reports/:id?token=...
func DownloadURL(baseURL, reportID, token string) string {
	return strings.TrimRight(baseURL, "/") + "/reports/" + url.PathEscape(reportID) + "?token=" + url.QueryEscape(token)
}
