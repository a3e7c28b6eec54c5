package auth

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Accounts are optional: the game is playable as a guest, but a logged-in
// connection gets a stable display name on its player record.

var (
	ErrInvalidInput   = errors.New("invalid registration")
	ErrUserExists     = errors.New("username already exists")
	ErrBadCredentials = errors.New("invalid credentials")
	ErrInvalidToken   = errors.New("invalid token")
)

type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

type userStore struct {
	mu    sync.RWMutex
	path  string
	users map[string]*User
}

func newUserStore(path string) (*userStore, error) {
	s := &userStore{path: path, users: map[string]*User{}}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if b, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(b, &s.users); err != nil {
			return nil, fmt.Errorf("parse user store: %w", err)
		}
	}
	return s, nil
}

func (s *userStore) save() error {
	s.mu.RLock()
	b, _ := json.MarshalIndent(s.users, "", "  ")
	s.mu.RUnlock()
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write user store: %w", err)
	}
	return nil
}

func (s *userStore) get(username string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[strings.ToLower(username)]
	return u, ok
}

func (s *userStore) put(u *User) error {
	s.mu.Lock()
	s.users[strings.ToLower(u.Username)] = u
	s.mu.Unlock()
	return s.save()
}

type Auth struct {
	users    *userStore
	jwtKey   []byte
	issuer   string
	tokenTTL time.Duration
	log      *zap.SugaredLogger
}

// NewAuth opens the user store under dataDir and loads (or creates) the JWT
// signing key. A nil logger disables logging.
func NewAuth(dataDir string, log *zap.SugaredLogger) (*Auth, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	users, err := newUserStore(filepath.Join(dataDir, "users.json"))
	if err != nil {
		return nil, err
	}
	keyPath := filepath.Join(dataDir, "jwt.key")
	key, err := os.ReadFile(keyPath)
	if err != nil || len(key) < 32 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
		if err := os.WriteFile(keyPath, key, 0o600); err != nil {
			return nil, fmt.Errorf("store signing key: %w", err)
		}
		log.Infow("generated jwt signing key", "path", keyPath)
	}
	return &Auth{
		users:    users,
		jwtKey:   key,
		issuer:   "PixelMiner",
		tokenTTL: 24 * time.Hour,
		log:      log,
	}, nil
}

// Register creates an account. Validation failures wrap ErrInvalidInput so
// the HTTP layer can tell them from storage errors.
func (a *Auth) Register(username, password, confirm string) error {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return fmt.Errorf("%w: username required", ErrInvalidInput)
	case len(password) < 6:
		return fmt.Errorf("%w: password too short", ErrInvalidInput)
	case password != confirm:
		return fmt.Errorf("%w: passwords do not match", ErrInvalidInput)
	}
	if _, exists := a.users.get(username); exists {
		return ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u := &User{Username: username, PasswordHash: string(hash), CreatedAt: time.Now()}
	if err := a.users.put(u); err != nil {
		return err
	}
	a.log.Infow("user registered", "user", username)
	return nil
}

// Login verifies credentials and issues a signed token for the account.
func (a *Auth) Login(username, password string) (LoginResp, error) {
	u, ok := a.users.get(username)
	if !ok || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return LoginResp{}, ErrBadCredentials
	}
	claims := jwt.MapClaims{
		"sub": u.Username,
		"iss": a.issuer,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(a.tokenTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtKey)
	if err != nil {
		return LoginResp{}, fmt.Errorf("sign token: %w", err)
	}
	a.log.Infow("user logged in", "user", u.Username)
	return LoginResp{Token: signed, Username: u.Username}, nil
}

// ParseToken validates a token and returns the username it was issued for.
func (a *Auth) ParseToken(tok string) (string, error) {
	if tok == "" {
		return "", ErrInvalidToken
	}
	t, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		return a.jwtKey, nil
	})
	if err != nil || !t.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

type RegisterReq struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}
type RegisterResp struct {
	OK bool `json:"ok"`
}

func (a *Auth) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	err := a.Register(req.Username, req.Password, req.PasswordConfirm)
	switch {
	case err == nil:
		_ = json.NewEncoder(w).Encode(RegisterResp{OK: true})
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrUserExists):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		a.log.Errorw("register failed", "err", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
	}
}

type LoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type LoginResp struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (a *Auth) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	resp, err := a.Login(req.Username, req.Password)
	switch {
	case err == nil:
		_ = json.NewEncoder(w).Encode(resp)
	case errors.Is(err, ErrBadCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		a.log.Errorw("login failed", "err", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
	}
}

// TokenFromRequest pulls a token from the Authorization header or the token
// query parameter. Used by the websocket endpoint where auth is optional.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
