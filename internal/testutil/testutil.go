package testutil

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/flowboard/internal/auth"
	"github.com/hugh/flowboard/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.Board{},
		&models.Lane{},
		&models.Card{},
		&models.Category{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// NewTestLogger returns a logger that discards nothing but stays quiet at
// info level in test output.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// CreateTestVerificationService creates a verification token service for testing
func CreateTestVerificationService() *auth.VerificationTokenService {
	return auth.NewVerificationTokenService("test-secret-key-for-testing", time.Hour)
}

// CreateTestUser creates a verified test user
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	suffix := uuid.New().String()[:8]
	user := &models.User{
		Base:         models.Base{ID: uuid.New()},
		Username:     "test-" + suffix,
		Email:        "test-" + suffix + "@example.com",
		PasswordHash: hash,
		IsVerified:   true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestBoard creates a board owned by the given user
func CreateTestBoard(t *testing.T, db *gorm.DB, ownerID uuid.UUID, name string) *models.Board {
	t.Helper()

	board := &models.Board{
		Base:    models.Base{ID: uuid.New()},
		Name:    name,
		Color:   models.DefaultBoardColor,
		OwnerID: ownerID,
	}

	if err := db.Create(board).Error; err != nil {
		t.Fatalf("failed to create test board: %v", err)
	}

	return board
}

// CreateTestLane creates a lane on the given board
func CreateTestLane(t *testing.T, db *gorm.DB, boardID uuid.UUID, title string, position float64) *models.Lane {
	t.Helper()

	lane := &models.Lane{
		Base:     models.Base{ID: uuid.New()},
		Title:    title,
		Position: position,
		BoardID:  boardID,
	}

	if err := db.Create(lane).Error; err != nil {
		t.Fatalf("failed to create test lane: %v", err)
	}

	return lane
}

// CreateTestCard creates a card in the given lane
func CreateTestCard(t *testing.T, db *gorm.DB, laneID uuid.UUID, title string, position float64) *models.Card {
	t.Helper()

	card := &models.Card{
		Base:     models.Base{ID: uuid.New()},
		Title:    title,
		Position: position,
		LaneID:   laneID,
	}

	if err := db.Create(card).Error; err != nil {
		t.Fatalf("failed to create test card: %v", err)
	}

	return card
}

// CreateTestCategory creates a global category
func CreateTestCategory(t *testing.T, db *gorm.DB, name, color string) *models.Category {
	t.Helper()

	category := &models.Category{
		Base:  models.Base{ID: uuid.New()},
		Name:  name,
		Color: color,
	}

	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}

	return category
}

// GenerateTestToken generates a valid session token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user.ID, user.Username, user.Email)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	DB           *gorm.DB
	JWTService   *auth.JWTService
	Verification *auth.VerificationTokenService
	User         *models.User
	Board        *models.Board
	Token        string
}

// NewTestContext creates a complete test setup with DB, verified user, board
// and session token
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	verification := CreateTestVerificationService()
	user := CreateTestUser(t, db)
	board := CreateTestBoard(t, db, user.ID, "Main Project")
	token := GenerateTestToken(t, jwtService, user)

	return &TestSetup{
		DB:           db,
		JWTService:   jwtService,
		Verification: verification,
		User:         user,
		Board:        board,
		Token:        token,
	}
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
