// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apitest runs an in-memory implementation of the micro-motivation
// REST API for tests and offline demos.
//
// It follows the same contract as the real backend: JSON bodies, HS256
// bearer tokens carrying user_id and exp, {"message": ...} error bodies and
// 401 for missing or invalid tokens. Tests can script any route's response
// and count how often each route was hit.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeranaias/microstep-tui/internal/model"
)

// Prefix is the path prefix all routes live under.
const Prefix = "/api"

// DefaultUserID owns requests in open (single-user) mode.
const DefaultUserID = "default_user_123"

type account struct {
	user model.User
	hash []byte
}

type canned struct {
	status int
	body   string
	once   bool
}

// Server is a fake backend. The zero value is not usable; call New.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	secret   []byte
	accounts map[string]*account      // by email
	tasks    map[string][]*model.Task // by user id, newest first
	stats    map[string]*model.Stats  // explicit overrides by user id
	scripts  map[string]canned        // "METHOD /path" -> response
	hits     map[string]int           // "METHOD /path" -> count
	open     bool
	now      func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// Open disables authentication; every request acts as DefaultUserID.
func Open() Option {
	return func(s *Server) { s.open = true }
}

// WithClock overrides the time source used for token expiry and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New starts a fake backend. Callers must Close it.
func New(opts ...Option) *Server {
	s := newServer(opts...)
	s.Server = httptest.NewServer(s.Handler())
	return s
}

func newServer(opts ...Option) *Server {
	s := &Server{
		secret:   []byte("apitest-secret"),
		accounts: make(map[string]*account),
		tasks:    make(map[string][]*model.Task),
		stats:    make(map[string]*model.Stats),
		scripts:  make(map[string]canned),
		hits:     make(map[string]int),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler returns a fake backend handler without starting a listener,
// for mounting on a real http.Server.
func NewHandler(opts ...Option) (*Server, http.Handler) {
	s := newServer(opts...)
	return s, s.Handler()
}

// BaseURL is the URL clients should be configured with.
func (s *Server) BaseURL() string {
	return s.URL + Prefix
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record)

	api := r.PathPrefix(Prefix).Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(s.authenticate)
	protected.HandleFunc("/tasks", s.handleListTasks).Methods(http.MethodGet)
	protected.HandleFunc("/tasks", s.handleCreateTask).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/{id}/complete", s.handleComplete).Methods(http.MethodPost)
	protected.HandleFunc("/nudge", s.handleNudge).Methods(http.MethodPost)
	protected.HandleFunc("/daily-digest", s.handleDigest).Methods(http.MethodGet)
	protected.HandleFunc("/user/stats", s.handleStats).Methods(http.MethodGet)
	return r
}

// =============================================================================
// TEST HOOKS
// =============================================================================

// AddUser creates an account and returns its profile.
func (s *Server) AddUser(name, email, password string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(name, email, password)
}

func (s *Server) addUserLocked(name, email, password string) model.User {
	// MinCost keeps test setup fast.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("apitest: hash password: %v", err))
	}
	u := model.User{UserID: uuid.NewString(), Email: email, Name: name}
	s.accounts[strings.ToLower(email)] = &account{user: u, hash: hash}
	return u
}

// SetStreak sets a user's streak counter.
func (s *Server) SetStreak(userID string, days int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acct := s.accountByIDLocked(userID); acct != nil {
		acct.user.Streak = days
	}
}

// SeedTasks appends tasks to userID's list in the given order.
func (s *Server) SeedTasks(userID string, tasks ...model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range tasks {
		t := tasks[i]
		if t.Status == "" {
			t.Status = model.StatusPending
		}
		s.tasks[userID] = append(s.tasks[userID], &t)
	}
}

// SetStats pins the stats snapshot returned for userID.
func (s *Server) SetStats(userID string, st model.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[userID] = &st
}

// Respond scripts every request to method+path (relative to Prefix) to get
// status and body instead of the normal handler.
func (s *Server) Respond(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[method+" "+path] = canned{status: status, body: body}
}

// RespondOnce is Respond for the next matching request only.
func (s *Server) RespondOnce(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[method+" "+path] = canned{status: status, body: body, once: true}
}

// Hits returns how many requests reached method+path.
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// Token signs a token for userID that expires after ttl (negative ttl gives
// an already-expired token).
func (s *Server) Token(userID string, ttl time.Duration) string {
	return s.TokenWithClaims(jwt.MapClaims{
		"user_id": userID,
		"exp":     s.now().Add(ttl).Unix(),
	})
}

// TokenWithClaims signs arbitrary claims with the server secret.
func (s *Server) TokenWithClaims(claims jwt.MapClaims) string {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("apitest: sign token: %v", err))
	}
	return signed
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

type ctxKey struct{}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + strings.TrimPrefix(r.URL.Path, Prefix)

		s.mu.Lock()
		s.hits[key]++
		script, scripted := s.scripts[key]
		if scripted && script.once {
			delete(s.scripts, key)
		}
		s.mu.Unlock()

		if scripted {
			if script.body != "" {
				w.Header().Set("Content-Type", "application/json")
			}
			w.WriteHeader(script.status)
			_, _ = w.Write([]byte(script.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.open {
			next.ServeHTTP(w, withUser(r, DefaultUserID))
			return
		}

		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			writeMessage(w, http.StatusUnauthorized, "Token is missing!")
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.now))
		userID, _ := claims["user_id"].(string)
		if err != nil || userID == "" {
			writeMessage(w, http.StatusUnauthorized, "Token is invalid!")
			return
		}
		next.ServeHTTP(w, withUser(r, userID))
	})
}

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(contextWithUser(r.Context(), userID))
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg model.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil || reg.Email == "" || reg.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required!")
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[strings.ToLower(reg.Email)]; exists {
		s.mu.Unlock()
		writeMessage(w, http.StatusBadRequest, "User already exists!")
		return
	}
	u := s.addUserLocked(reg.Name, reg.Email, reg.Password)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, model.AuthReply{
		Message: "User created successfully!",
		Token:   s.Token(u.UserID, 30*24*time.Hour),
		User:    u,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body!")
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[strings.ToLower(creds.Email)]
	var (
		u    model.User
		hash []byte
	)
	if ok {
		u, hash = acct.user, acct.hash
	}
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(creds.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials!")
		return
	}
	writeJSON(w, http.StatusOK, model.AuthReply{
		Message: "Login successful!",
		Token:   s.Token(u.UserID, 30*24*time.Hour),
		User:    u,
	})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r.Context())

	s.mu.Lock()
	out := make([]wireTask, 0, len(s.tasks[userID]))
	for _, t := range s.tasks[userID] {
		out = append(out, toWire(*t))
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req model.NewTask
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		writeMessage(w, http.StatusBadRequest, "Title is required!")
		return
	}
	req = req.WithDefaults()

	task := &model.Task{
		TaskID:            uuid.NewString(),
		Title:             req.Title,
		Description:       req.Description,
		Priority:          req.Priority,
		EstimatedDuration: req.EstimatedDuration,
		Status:            model.StatusPending,
		PointsValue:       10,
	}

	userID := userFrom(r.Context())
	s.mu.Lock()
	s.tasks[userID] = append([]*model.Task{task}, s.tasks[userID]...)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, toWire(*task))
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r.Context())
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	var task *model.Task
	for _, t := range s.tasks[userID] {
		if t.TaskID == id {
			task = t
			break
		}
	}
	if task == nil {
		s.mu.Unlock()
		writeMessage(w, http.StatusNotFound, "Task not found!")
		return
	}
	now := s.now()
	task.Status = model.StatusCompleted
	task.CompletedAt = &now
	points := task.PointsValue
	if points == 0 {
		points = 10
	}
	if acct := s.accountByIDLocked(userID); acct != nil {
		acct.user.TotalPoints += points
	}
	title := task.Title
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, model.Completion{
		Message:      "Task completed!",
		PointsEarned: points,
		Celebration:  fmt.Sprintf("Great job finishing %q! Keep the momentum going!", title),
	})
}

// Nudges are the canned replies per mood.
var Nudges = map[model.Mood]string{
	model.MoodPositive: "You're on a roll! Pick the next micro-step and ride that energy.",
	model.MoodNeutral:  "Hey there! Ready to tackle your next micro-step? You've got this!",
	model.MoodNegative: "Tough day? Pick one tiny step. Five minutes counts.",
}

func (s *Server) handleNudge(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mood model.Mood `json:"mood"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	text, ok := Nudges[body.Mood]
	if !ok {
		text = Nudges[model.MoodNeutral]
	}
	writeJSON(w, http.StatusOK, model.NudgeReply{Nudge: text})
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	st := s.statsFor(userFrom(r.Context()))
	writeJSON(w, http.StatusOK, model.Digest{
		Digest: fmt.Sprintf("Today you completed %d of %d tasks and hold %d points. Rest well!",
			st.CompletedTasks, st.TotalTasks, st.TotalPoints),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.statsFor(userFrom(r.Context())))
}

func (s *Server) statsFor(userID string) model.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.stats[userID]; ok {
		return *st
	}

	var st model.Stats
	for _, t := range s.tasks[userID] {
		st.TotalTasks++
		st.WeeklyTasks++
		if t.IsCompleted() {
			st.CompletedTasks++
		}
	}
	if st.TotalTasks > 0 {
		st.CompletionRate = float64(st.CompletedTasks) / float64(st.TotalTasks) * 100
	}
	if acct := s.accountByIDLocked(userID); acct != nil {
		st.Streak = acct.user.Streak
		st.TotalPoints = acct.user.TotalPoints
	}
	return st
}

func (s *Server) accountByIDLocked(userID string) *account {
	for _, a := range s.accounts {
		if a.user.UserID == userID {
			return a
		}
	}
	return nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// wireTask is a task as Flask's jsonify renders it: datetimes become HTTP dates.
type wireTask struct {
	model.Task
	CompletedAt string `json:"completed_at,omitempty"`
}

func toWire(t model.Task) wireTask {
	wt := wireTask{Task: t}
	if t.CompletedAt != nil {
		wt.CompletedAt = t.CompletedAt.UTC().Format(http.TimeFormat)
	}
	return wt
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
