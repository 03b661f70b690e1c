package endpoint_test

import (
	"net/http"
	"testing"

	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginMe_RoundTrip(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/auth/register", "", gin.H{
		"email":        "New.User@Example.com",
		"password":     testPassword,
		"confpassword": testPassword,
		"firstname":    "new",
		"lastname":     "user",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")
	created := decodeMap(t, w)
	assert.Equal(t, "new.user@example.com", created["email"])
	assert.Equal(t, "new.user@example.com", created["username"])
	assert.Equal(t, "Patient", created["role"])

	w = ts.do(http.MethodPost, "/auth/login", "", gin.H{"email": "new.user@example.com", "password": testPassword, "role": "patient"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tok := decodeMap(t, w)
	assert.Equal(t, "bearer", tok["token_type"])
	token, _ := tok["access_token"].(string)
	require.NotEmpty(t, token)

	w = ts.do(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	me := decodeMap(t, w)
	assert.Equal(t, created["id"], me["id"])
	assert.Equal(t, "new", me["firstname"])
}

func TestRegister_Rejections(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "taken@example.com", model.RolePatient)

	cases := []struct {
		name string
		body interface{}
	}{
		{"duplicate email", gin.H{"email": "taken@example.com", "password": testPassword, "confpassword": testPassword, "firstname": "A"}},
		{"password mismatch", gin.H{"email": "a@example.com", "password": testPassword, "confpassword": "different1", "firstname": "A"}},
		{"admin role", gin.H{"email": "b@example.com", "password": testPassword, "confpassword": testPassword, "firstname": "A", "role": "Admin"}},
		{"unknown role", gin.H{"email": "c@example.com", "password": testPassword, "confpassword": testPassword, "firstname": "A", "role": "Nurse"}},
		{"missing email", gin.H{"password": testPassword, "confpassword": testPassword, "firstname": "A"}},
		{"malformed json", `{"email":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ts.do(http.MethodPost, "/auth/register", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			body := decodeError(t, w)
			assert.Equal(t, "ValidationError", body.Type)
			assert.Equal(t, http.StatusBadRequest, body.Code)
		})
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "pat@example.com", model.RolePatient)

	unknown := ts.do(http.MethodPost, "/auth/login", "", gin.H{"email": "nobody@example.com", "password": testPassword})
	wrong := ts.do(http.MethodPost, "/auth/login", "", gin.H{"email": "pat@example.com", "password": "wrong-password"})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, decodeError(t, unknown), decodeError(t, wrong))

	var failures int64
	require.NoError(t, ts.db.Model(&model.SecurityLog{}).Where("event_type = ?", util.EventLoginFailure).Count(&failures).Error)
	assert.Equal(t, int64(2), failures)
}

func TestLogin_RoleMismatchIsForbidden(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "pat@example.com", model.RolePatient)

	w := ts.do(http.MethodPost, "/auth/login", "", gin.H{"email": "pat@example.com", "password": testPassword, "role": "Doctor"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "PermissionError", decodeError(t, w).Type)
}

func TestLogin_SuccessIsAudited(t *testing.T) {
	ts := newTestServer(t)
	id := ts.register(t, "pat@example.com", model.RolePatient)
	ts.login(t, "pat@example.com", model.RolePatient)

	var entry model.SecurityLog
	require.NoError(t, ts.db.Where("event_type = ?", util.EventLoginSuccess).First(&entry).Error)
	assert.Equal(t, id, entry.UserID)
	assert.Equal(t, "pat@example.com", entry.Email)
}

func TestProtectedRoutes_RequireBearerToken(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/auth/me", "/patients", "/doctors", "/appointments", "/medical-records"} {
		w := ts.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, "AuthenticationError", decodeError(t, w).Type, path)

		w = ts.do(http.MethodGet, path, "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	acct := ts.account(t, "pat@example.com", model.RolePatient)

	w := ts.do(http.MethodPost, "/auth/logout", acct.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "logged out", decodeMap(t, w)["message"])

	var n int64
	require.NoError(t, ts.db.Model(&model.SecurityLog{}).Where("event_type = ? AND user_id = ?", util.EventLogout, acct.UserID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestRootAndHealthz(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Welcome to medibook!", decodeMap(t, w)["message"])

	w = ts.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeMap(t, w)["status"])

	w = ts.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NotFoundError", decodeError(t, w).Type)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
