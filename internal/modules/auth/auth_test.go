package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/promoled-directory/internal/modules/admin"
)

type adminRepo struct{ admins []*admin.Admin }

func (r *adminRepo) CreateAdmin(ctx context.Context, a *admin.Admin) error {
	r.admins = append(r.admins, a)
	return nil
}

func (r *adminRepo) GetAdminByEmail(ctx context.Context, email string) (*admin.Admin, error) {
	for _, a := range r.admins {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, admin.ErrAdminNotFound
}

func (r *adminRepo) GetAdminByID(ctx context.Context, id string) (*admin.Admin, error) {
	return nil, admin.ErrAdminNotFound
}

var bossID = uuid.MustParse("0b3c3d6e-5f1a-4c8e-9d2b-7a6f5e4d3c2b")

func newTestService(t *testing.T) *service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &adminRepo{admins: []*admin.Admin{{ID: bossID, Email: "boss@promoled.fr", PasswordHash: string(hash)}}}
	return NewService(repo, "test-secret", time.Hour).(*service)
}

func TestLoginAndVerify(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Login(context.Background(), " Boss@PromoLED.fr", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, time.Minute)

	id, err := svc.Verify(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, bossID.String(), id)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(context.Background(), "boss@promoled.fr", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@promoled.fr", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRejects(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := *svc
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := expired.Login(context.Background(), "boss@promoled.fr", "correct horse")
	require.NoError(t, err)
	_, err = svc.Verify(token.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewService(&adminRepo{}, "other-secret", time.Hour)
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwt.StandardClaims{
		Subject: bossID.String(), Issuer: issuer, ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})
	signed, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = other.Verify(signed)
	assert.NoError(t, err)
}

func TestRequireAdmin(t *testing.T) {
	svc := newTestService(t)
	token, err := svc.Login(context.Background(), "boss@promoled.fr", "correct horse")
	require.NoError(t, err)

	router := chi.NewRouter()
	router.With(svc.RequireAdmin).Get("/api/v1/admin/ping", func(w http.ResponseWriter, r *http.Request) {
		id, _ := AdminID(r.Context())
		w.Write([]byte(id))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, bossID.String(), rec.Body.String())
}

func TestLoginHandler(t *testing.T) {
	router := chi.NewRouter()
	NewHandler(newTestService(t)).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"boss@promoled.fr","password":"correct horse"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"boss@promoled.fr","password":"nope"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
