// Package session keeps the cart ledger in a signed browser cookie.
package session

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/xenking/gymshop/internal/domain/cart"
)

const cartKey = "cart"

// Config controls the session cookie.
type Config struct {
	Name   string
	Secret []byte
	MaxAge time.Duration
	Secure bool
}

// Store loads and saves sessions.
type Store struct {
	name  string
	store sessions.Store
}

// NewStore creates a cookie-backed Store. Secret signs the cookie and must
// not be empty.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("session secret is required")
	}
	if cfg.Name == "" {
		return nil, errors.New("session name is required")
	}

	cs := sessions.NewCookieStore(cfg.Secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	// MaxAge also bounds the signed timestamp accepted by the cookie codec.
	cs.MaxAge(int(cfg.MaxAge.Seconds()))
	return &Store{name: cfg.Name, store: cs}, nil
}

// Load returns the session for r. A cookie that cannot be decoded, for
// example after a secret rotation, yields a fresh session.
func (s *Store) Load(r *http.Request) *Session {
	sess, err := s.store.Get(r, s.name)
	if err != nil {
		zctx.From(r.Context()).Debug("Discarding unreadable session", zap.Error(err))
		sess = sessions.NewSession(s.store, s.name)
		sess.IsNew = true
	}
	return &Session{raw: sess}
}

// Session is one browser's state for the duration of a request. It is owned
// by the request handling it.
type Session struct {
	raw *sessions.Session
}

// Cart returns the session's ledger. An absent or corrupt ledger is returned
// as an empty one.
func (s *Session) Cart() *cart.Ledger {
	raw, ok := s.raw.Values[cartKey].(string)
	if !ok {
		return &cart.Ledger{}
	}
	l, err := decodeLedger(raw)
	if err != nil {
		return &cart.Ledger{}
	}
	return l
}

// SetCart stores the ledger. An empty ledger removes the cart entirely.
func (s *Session) SetCart(l *cart.Ledger) {
	if l.Empty() {
		delete(s.raw.Values, cartKey)
		return
	}
	s.raw.Values[cartKey] = encodeLedger(l)
}

// Save writes the session cookie.
func (s *Session) Save(w http.ResponseWriter, r *http.Request) error {
	if err := s.raw.Save(r, w); err != nil {
		return errors.Wrap(err, "save session")
	}
	return nil
}
