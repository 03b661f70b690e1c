package endpoint_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ariebrainware/medibook/config"
	"github.com/ariebrainware/medibook/endpoint"
	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/repository"
	"github.com/ariebrainware/medibook/service"
	"github.com/ariebrainware/medibook/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "password123"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	r   *gin.Engine
	db  *gorm.DB
	svc *service.Services
}

// newTestServer builds the full router over a fresh in-memory SQLite database.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dsn := fmt.Sprintf("file:endpoint_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, model.Migrate(db))

	util.SetSecurityLoggerDB(db)
	t.Cleanup(func() {
		util.SetSecurityLoggerDB(nil)
		_ = sqlDB.Close()
	})

	cfg := &config.Config{AppName: "medibook", CORSOrigins: []string{"*"}, LoginRateLimit: 5}
	tokens := util.NewTokenIssuer([]byte("endpoint-test-secret"), 30*time.Minute)
	svc := service.New(repository.NewGormStore(db), tokens)
	return &testServer{r: endpoint.SetupRouter(cfg, db, svc), db: db, svc: svc}
}

func (ts *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *strings.Reader
	switch v := body.(type) {
	case nil:
		reader = strings.NewReader("")
	case string:
		reader = strings.NewReader(v)
	default:
		b, _ := json.Marshal(v)
		reader = strings.NewReader(string(b))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.r.ServeHTTP(w, req)
	return w
}

// register creates an account through the API and returns its user id.
func (ts *testServer) register(t *testing.T, email string, role model.Role) uint {
	t.Helper()
	w := ts.do(http.MethodPost, "/auth/register", "", gin.H{
		"email":        email,
		"password":     testPassword,
		"confpassword": testPassword,
		"firstname":    "Test",
		"lastname":     "User",
		"role":         string(role),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out model.UserOut
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out.ID
}

func (ts *testServer) login(t *testing.T, email string, role model.Role) string {
	t.Helper()
	w := ts.do(http.MethodPost, "/auth/login", "", gin.H{"email": email, "password": testPassword, "role": string(role)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tok service.Token
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	return tok.AccessToken
}

type account struct {
	UserID uint
	Token  string
}

func (ts *testServer) account(t *testing.T, email string, role model.Role) account {
	t.Helper()
	id := ts.register(t, email, role)
	return account{UserID: id, Token: ts.login(t, email, role)}
}

func (ts *testServer) admin(t *testing.T) account {
	t.Helper()
	hash, err := util.HashPassword(testPassword)
	require.NoError(t, err)
	u, err := model.SeedAdmin(ts.db, "admin@example.com", hash)
	require.NoError(t, err)
	return account{UserID: u.ID, Token: ts.login(t, "admin@example.com", model.RoleAdmin)}
}

// clinic is a doctor and two patients, each with a profile.
type clinic struct {
	doctor, patient, patient2       account
	doctorID, patientID, patient2ID uint
}

func (ts *testServer) clinic(t *testing.T) clinic {
	t.Helper()
	c := clinic{
		doctor:   ts.account(t, "doc@example.com", model.RoleDoctor),
		patient:  ts.account(t, "pat@example.com", model.RolePatient),
		patient2: ts.account(t, "pat2@example.com", model.RolePatient),
	}
	c.doctorID = createdID(t, ts.do(http.MethodPost, "/doctors", c.doctor.Token, gin.H{
		"specialization": "Cardiology", "contact": "555-0100", "experience": 10, "fee": 150.5,
	}))
	c.patientID = createdID(t, ts.do(http.MethodPost, "/patients", c.patient.Token, gin.H{"phone": "555-0101"}))
	c.patient2ID = createdID(t, ts.do(http.MethodPost, "/patients", c.patient2.Token, gin.H{"phone": "555-0102"}))
	return c
}

func createdID(t *testing.T, w *httptest.ResponseRecorder) uint {
	t.Helper()
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotZero(t, out.ID)
	return out.ID
}

var day = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

func at(min int) time.Time {
	return day.Add(time.Duration(min) * time.Minute)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) util.ErrorBody {
	t.Helper()
	var body util.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Error
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
