package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"paper-shelf/config"
	"paper-shelf/models"
	"paper-shelf/services"
	"paper-shelf/storage"
)

// envelope ist die JSON-Hülle, die jede Route zurückgibt.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testApp struct {
	router   *gin.Engine
	identity *services.IdentityService
	files    *storage.FileStore
	db       *gorm.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Admin{}, &models.Researcher{},
		&models.Field{}, &models.Paper{}, &models.Author{}, &models.AuthorPaper{},
		&models.PaperKeyword{}, &models.Download{}, &models.Review{}, &models.Search{},
		&models.ChatSession{}, &models.ChatMessage{},
	))

	cfg := &config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour, MaxUploadMB: 1}
	log := zap.NewNop()
	files, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	identity := services.NewIdentityService(cfg, db, files, log)
	papers := services.NewPaperService(cfg, db, files, log)
	chat := services.NewChatService(db, log)
	interactions := services.NewInteractionService(db, log)
	stats := services.NewStatsService(db, log)
	recommend := services.NewRecommendService(db, papers, log)

	router := gin.New()
	setupAuthRoutes(router, identity, log)
	setupPaperRoutes(router, papers, interactions, identity, log)
	setupAuthorRoutes(router, db, log)
	setupFieldRoutes(router, db, identity, log)
	setupInteractionRoutes(router, interactions, identity, log)
	setupStatisticsRoutes(router, stats, identity, log)
	setupAIRoutes(router, recommend, identity, log)
	setupUserRoutes(router, identity, log)
	setupAdminRoutes(router, cfg, papers, identity, stats, files, log)
	setupChatRoutes(router, chat, identity, log)
	router.NoRoute(func(c *gin.Context) {
		respond(c, http.StatusNotFound, "Endpoint not found", nil)
	})
	return &testApp{router: router, identity: identity, files: files, db: db}
}

func (a *testApp) doJSON(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

// doUpload schickt ein Multipart-Formular an POST /api/admin/papers.
// Mit contentType "" wird kein pdfFile-Teil mitgeschickt.
func (a *testApp) doUpload(t *testing.T, token string, fields map[string]string, contentType string, fileContent []byte) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if contentType != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="pdfFile"; filename="upload.pdf"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(fileContent)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/papers", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func (a *testApp) registerAndLogin(t *testing.T, role string) string {
	t.Helper()
	email := fmt.Sprintf("%s-user@example.org", role)
	_, err := a.identity.Register(services.RegisterInput{
		Name: role + " User", Email: email, Password: "secret123", Role: role,
	})
	require.NoError(t, err)

	_, env := a.doJSON(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": email, "password": "secret123",
	})
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func (a *testApp) createField(t *testing.T, name string) uint {
	t.Helper()
	field := models.Field{FieldName: name}
	require.NoError(t, a.db.Create(&field).Error)
	return field.ID
}

func (a *testApp) storedFiles(t *testing.T) []string {
	t.Helper()
	paths, err := a.files.List()
	require.NoError(t, err)
	return paths
}

func TestRegisterEndpoint(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.doJSON(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Ada", "email": "ada@example.org", "password": "secret123",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)

	// Doppelte E-Mail ergibt 409 mit success=false.
	rec, env = app.doJSON(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Ada", "email": "ada@example.org", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Email already registered", env.Message)
}

func TestLoginEndpoint_WrongPassword(t *testing.T) {
	app := newTestApp(t)
	app.registerAndLogin(t, models.RoleResearcher)

	rec, env := app.doJSON(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "Researcher-user@example.org", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)
}

func TestAuthMiddleware(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.doJSON(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token required", env.Message)

	rec, _ = app.doJSON(t, http.MethodGet, "/api/auth/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := app.registerAndLogin(t, models.RoleResearcher)
	rec, env = app.doJSON(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}

func TestAdminMiddleware(t *testing.T) {
	app := newTestApp(t)
	researcherToken := app.registerAndLogin(t, models.RoleResearcher)

	rec, env := app.doJSON(t, http.MethodGet, "/api/admin/users", researcherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin access required", env.Message)

	adminToken := app.registerAndLogin(t, models.RoleAdmin)
	rec, _ = app.doJSON(t, http.MethodGet, "/api/admin/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUploadPaper(t *testing.T) {
	app := newTestApp(t)
	token := app.registerAndLogin(t, models.RoleAdmin)
	fieldID := app.createField(t, "Computer Science")

	rec, env := app.doUpload(t, token, map[string]string{
		"title":    "Graph Embeddings",
		"abstract": "On embeddings.",
		"fieldId":  fmt.Sprint(fieldID),
		"authors":  `[{"firstName":"Grace","lastName":"Hopper","email":"grace@example.org","country":"US"}]`,
		"keywords": `["graphs","embeddings"]`,
	}, "application/pdf", []byte("%PDF-1.4 content"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, env.Success)
	assert.Len(t, app.storedFiles(t), 1)

	var created struct {
		PaperID uint `json:"paperId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	rec, env = app.doJSON(t, http.MethodGet, fmt.Sprintf("/api/papers/%d", created.PaperID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Keywords string `json:"keywords"`
		Authors  []struct {
			LastName string `json:"last_name"`
		} `json:"authors"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "graphs, embeddings", detail.Keywords)
	require.Len(t, detail.Authors, 1)
	assert.Equal(t, "Hopper", detail.Authors[0].LastName)
}

func TestUploadPaper_RejectsNonPDF(t *testing.T) {
	app := newTestApp(t)
	token := app.registerAndLogin(t, models.RoleAdmin)

	rec, env := app.doUpload(t, token, map[string]string{
		"title": "Nope", "abstract": "A.", "fieldId": "1",
	}, "text/plain", []byte("just text"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Only PDF files are allowed", env.Message)
	assert.Empty(t, app.storedFiles(t))
}

func TestUploadPaper_RejectsOversizedFile(t *testing.T) {
	app := newTestApp(t)
	token := app.registerAndLogin(t, models.RoleAdmin)

	// Limit im Test-Setup ist 1 MB.
	big := bytes.Repeat([]byte("x"), 2<<20)
	rec, env := app.doUpload(t, token, map[string]string{
		"title": "Huge", "abstract": "A.", "fieldId": "1",
	}, "application/pdf", big)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "File exceeds the upload size limit", env.Message)
	assert.Empty(t, app.storedFiles(t))
}

func TestUploadPaper_BadAuthorsPayloadRemovesFile(t *testing.T) {
	app := newTestApp(t)
	token := app.registerAndLogin(t, models.RoleAdmin)
	fieldID := app.createField(t, "Physics")

	rec, env := app.doUpload(t, token, map[string]string{
		"title":    "Broken",
		"abstract": "A.",
		"fieldId":  fmt.Sprint(fieldID),
		"authors":  "{not json",
	}, "application/pdf", []byte("%PDF-1.4 content"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid authors payload", env.Message)

	// Die bereits gespeicherte Datei muss wieder verschwunden sein.
	assert.Empty(t, app.storedFiles(t))
}

func TestUploadPaper_BadKeywordsPayloadRemovesFile(t *testing.T) {
	app := newTestApp(t)
	token := app.registerAndLogin(t, models.RoleAdmin)
	fieldID := app.createField(t, "Physics")

	rec, env := app.doUpload(t, token, map[string]string{
		"title":    "Broken",
		"abstract": "A.",
		"fieldId":  fmt.Sprint(fieldID),
		"keywords": "not-a-list",
	}, "application/pdf", []byte("%PDF-1.4 content"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid keywords payload", env.Message)
	assert.Empty(t, app.storedFiles(t))
}

func TestUploadPaper_MissingFile(t *testing.T) {
	app := newTestApp(t)
	token := app.registerAndLogin(t, models.RoleAdmin)
	fieldID := app.createField(t, "Physics")

	rec, env := app.doUpload(t, token, map[string]string{
		"title":    "No file",
		"abstract": "A.",
		"fieldId":  fmt.Sprint(fieldID),
	}, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "PDF file is required", env.Message)
}

func TestPapersEndpoint_EmptyList(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.doJSON(t, http.MethodGet, "/api/papers?page=1&limit=10", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, env = app.doJSON(t, http.MethodGet, "/api/papers/42", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Paper not found", env.Message)
}

func TestChatEndpoints(t *testing.T) {
	app := newTestApp(t)
	token := app.registerAndLogin(t, models.RoleResearcher)

	rec, env := app.doJSON(t, http.MethodPost, "/api/chat/sessions", token, gin.H{
		"title": "Literature review",
		"messages": []gin.H{
			{"role": "user", "content": "Find papers on curcumin"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var session struct {
		ID uint `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))

	rec, env = app.doJSON(t, http.MethodGet, fmt.Sprintf("/api/chat/sessions/%d", session.ID), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = app.doJSON(t, http.MethodDelete, fmt.Sprintf("/api/chat/sessions/%d", session.ID), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = app.doJSON(t, http.MethodGet, fmt.Sprintf("/api/chat/sessions/%d", session.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNoRoute(t *testing.T) {
	app := newTestApp(t)

	rec, env := app.doJSON(t, http.MethodGet, "/api/nothing/here", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Endpoint not found", env.Message)
}
