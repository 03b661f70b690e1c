package endpoint_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsers_AdminOnly(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.admin(t)
	pat := ts.account(t, "pat@example.com", model.RolePatient)

	w := ts.do(http.MethodGet, "/auth/users", pat.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodGet, "/auth/users?limit=1", admin.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decodeList(t, w), 1)
	assert.Equal(t, "2", w.Header().Get("X-Total-Count"))

	w = ts.do(http.MethodGet, "/auth/users?limit=-1", admin.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUser_OwnerOrAdmin(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.admin(t)
	pat := ts.account(t, "pat@example.com", model.RolePatient)
	other := ts.account(t, "other@example.com", model.RolePatient)

	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, fmt.Sprintf("/auth/users/%d", pat.UserID), pat.Token, nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, fmt.Sprintf("/auth/users/%d", pat.UserID), admin.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodGet, fmt.Sprintf("/auth/users/%d", pat.UserID), other.Token, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/auth/users/9999", admin.Token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/auth/users/abc", admin.Token, nil).Code)
}

func TestUpdateUser(t *testing.T) {
	ts := newTestServer(t)
	pat := ts.account(t, "pat@example.com", model.RolePatient)
	other := ts.account(t, "other@example.com", model.RolePatient)
	path := fmt.Sprintf("/auth/users/%d", pat.UserID)

	w := ts.do(http.MethodPut, path, pat.Token, gin.H{"firstname": "Jane", "lastname": "Doe"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Jane", decodeMap(t, w)["firstname"])

	w = ts.do(http.MethodPut, path, pat.Token, gin.H{"email": "other@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPut, path, other.Token, gin.H{"firstname": "Mallory"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var denied int64
	require.NoError(t, ts.db.Model(&model.SecurityLog{}).Where("event_type = ? AND user_id = ?", util.EventUnauthorizedAccess, other.UserID).Count(&denied).Error)
	assert.Equal(t, int64(1), denied)

	w = ts.do(http.MethodPut, path, pat.Token, gin.H{"password": "new-password-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var changed int64
	require.NoError(t, ts.db.Model(&model.SecurityLog{}).Where("event_type = ?", util.EventPasswordChanged).Count(&changed).Error)
	assert.Equal(t, int64(1), changed)

	w = ts.do(http.MethodPost, "/auth/login", "", gin.H{"email": "pat@example.com", "password": "new-password-1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetUserDisabled(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.admin(t)
	pat := ts.account(t, "pat@example.com", model.RolePatient)
	path := fmt.Sprintf("/auth/users/%d/disabled", pat.UserID)

	w := ts.do(http.MethodPatch, path, pat.Token, gin.H{"disabled": true})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodPatch, path, admin.Token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPatch, path, admin.Token, gin.H{"disabled": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decodeMap(t, w)["disabled"])

	w = ts.do(http.MethodGet, "/auth/me", pat.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "PermissionError", decodeError(t, w).Type)

	w = ts.do(http.MethodPatch, fmt.Sprintf("/auth/users/%d/disabled", admin.UserID), admin.Token, gin.H{"disabled": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPatch, path, admin.Token, gin.H{"disabled": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/auth/me", pat.Token, nil).Code)
}
