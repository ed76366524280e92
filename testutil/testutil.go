// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/metonline/hesap-paylas/cliparse"
	"github.com/metonline/hesap-paylas/groupcode"
	"github.com/metonline/hesap-paylas/models"
)

// TestSessionKey signs browser-session cookies in tests.
var TestSessionKey = []byte("0123456789abcdef0123456789abcdef")

// GetTestConfig returns a standard test configuration backed by memory.
func GetTestConfig(backendURL string) cliparse.Config {
	return cliparse.Config{
		Port:       cliparse.DefaultPort,
		BackendURL: backendURL,
		StoreType:  cliparse.StoreMemory,
		SessionKey: TestSessionKey,
		PublicURL:  cliparse.DefaultPublicURL,
		QRScheme:   "hesappaylas",
	}
}

// FakeBackend is an in-memory Hesap Paylaş backend.
// Accounts are keyed by email; any password works except "wrong".
type FakeBackend struct {
	Server *httptest.Server

	mu      sync.Mutex
	nextID  int
	tokens  map[string]models.User
	groups  map[int]*models.Group
	members map[int]map[int]bool
	joins   int
}

// NewFakeBackend starts a fake backend that is closed with the test.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	b := &FakeBackend{
		nextID:  1,
		tokens:  make(map[string]models.User),
		groups:  make(map[int]*models.Group),
		members: make(map[int]map[int]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/signup", b.signup)
	mux.HandleFunc("POST /api/auth/login", b.login)
	mux.HandleFunc("POST /api/auth/google", b.google)
	mux.HandleFunc("GET /api/user/profile", b.profile)
	mux.HandleFunc("GET /api/user/groups", b.listGroups)
	mux.HandleFunc("POST /api/groups", b.createGroup)
	mux.HandleFunc("POST /api/groups/join", b.join)
	mux.HandleFunc("GET /api/groups/{id}", b.getGroup)

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the API base URL.
func (b *FakeBackend) URL() string {
	return b.Server.URL + "/api"
}

// IssueToken registers a user and returns a valid bearer token for them.
func (b *FakeBackend) IssueToken(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.issue(models.User{Email: email, FirstName: "Test", LastName: "User"})
}

// AddGroup creates a group with the given canonical code and returns its ID.
func (b *FakeBackend) AddGroup(name, code string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.groups[id] = &models.Group{GroupSummary: models.GroupSummary{
		ID:            id,
		Name:          name,
		Category:      models.CategoryGeneral,
		Code:          code,
		CodeFormatted: groupcode.FormatLenient(code),
		Status:        "active",
		CreatedAt:     time.Now(),
	}}
	b.members[id] = make(map[int]bool)
	return id
}

// Joins reports how many join calls reached the backend.
func (b *FakeBackend) Joins() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.joins
}

// IsMember reports whether the holder of token belongs to group id.
func (b *FakeBackend) IsMember(token string, id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.tokens[token]
	return ok && b.members[id][u.ID]
}

func (b *FakeBackend) issue(u models.User) string {
	u.ID = b.nextID
	b.nextID++
	u.CreatedAt = time.Now().Format(time.RFC3339)
	tok := "tok-" + strconv.Itoa(u.ID)
	b.tokens[tok] = u
	return tok
}

func (b *FakeBackend) user(r *http.Request) (models.User, bool) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.tokens[tok]
	return u, ok
}

func (b *FakeBackend) signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	tok := b.issue(models.User{FirstName: req.FirstName, LastName: req.LastName, Email: req.Email, Phone: req.Phone})
	u := b.tokens[tok]
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, models.AuthResponse{Token: tok, User: u, Message: "Kayıt başarılı"})
}

func (b *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	json.NewDecoder(r.Body).Decode(&req)
	if req.Password == "wrong" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		return
	}

	b.mu.Lock()
	tok := b.issue(models.User{FirstName: "Test", LastName: "User", Email: req.Email})
	u := b.tokens[tok]
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, models.AuthResponse{Token: tok, User: u})
}

func (b *FakeBackend) google(w http.ResponseWriter, r *http.Request) {
	var req models.GoogleLoginRequest
	json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	tok := b.issue(models.User{FirstName: "Google", LastName: "User", Email: req.Token + "@gmail.com"})
	u := b.tokens[tok]
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, models.AuthResponse{Token: tok, User: u})
}

func (b *FakeBackend) profile(w http.ResponseWriter, r *http.Request) {
	u, ok := b.user(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Token is invalid"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (b *FakeBackend) listGroups(w http.ResponseWriter, r *http.Request) {
	u, ok := b.user(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Token is invalid"})
		return
	}

	b.mu.Lock()
	out := []models.GroupSummary{}
	for id := 1; id < b.nextID; id++ {
		if g, ok := b.groups[id]; ok && b.members[id][u.ID] {
			out = append(out, g.GroupSummary)
		}
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (b *FakeBackend) createGroup(w http.ResponseWriter, r *http.Request) {
	u, ok := b.user(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Token is invalid"})
		return
	}

	var req models.CreateGroupRequest
	json.NewDecoder(r.Body).Decode(&req)

	code, _ := groupcode.Generate(nil)
	id := b.AddGroup(req.Name, code.String())

	b.mu.Lock()
	b.members[id][u.ID] = true
	g := b.groups[id].GroupSummary
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, models.CreateGroupResponse{Success: true, Group: g})
}

func (b *FakeBackend) join(w http.ResponseWriter, r *http.Request) {
	u, ok := b.user(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Token is invalid"})
		return
	}

	var req models.JoinGroupRequest
	json.NewDecoder(r.Body).Decode(&req)
	code := groupcode.Normalize(req.Code)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.joins++

	for id, g := range b.groups {
		if g.Code != code {
			continue
		}
		if b.members[id][u.ID] {
			writeJSON(w, http.StatusOK, models.JoinGroupResponse{Message: "Zaten bu grubun üyesisiniz"})
			return
		}
		b.members[id][u.ID] = true
		writeJSON(w, http.StatusOK, models.JoinGroupResponse{Success: true, ID: id, Name: g.Name})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Invalid group code"})
}

func (b *FakeBackend) getGroup(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.user(r); !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Token is invalid"})
		return
	}

	id, _ := strconv.Atoi(r.PathValue("id"))
	b.mu.Lock()
	g, ok := b.groups[id]
	var out models.Group
	if ok {
		out = *g
	}
	b.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Group not found"})
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
