package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/verte-zerg/cleanse369/internal/session"
)

// entry is one browser session. mu serializes its requests.
type entry struct {
	mu    sync.Mutex
	slot  *session.MemorySlot
	coord *session.Coordinator
	sess  *session.Session
}

// acquire returns the caller's session locked, creating it on first use,
// and applies the identity header. The returned error lists non-fatal
// persistence failures. Callers must unlock e.mu.
func (s *Server) acquire(c *gin.Context) (*entry, error) {
	ctx := c.Request.Context()
	userID := c.GetHeader(userHeader)

	id, _ := c.Cookie(cookieName)
	s.mu.Lock()
	e, ok := s.sessions[id]
	if !ok {
		id = uuid.NewString()
		slot := session.NewMemorySlot(c.Query(tokenParam))
		e = &entry{
			slot:  slot,
			coord: session.NewCoordinator(s.remote, slot, s.logger, session.WithClock(s.now)),
		}
		s.sessions[id] = e
	}
	e.mu.Lock()
	s.mu.Unlock()

	if !ok {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, id, cookieMaxAge, "/", "", false, true)
		sess, err := e.coord.Load(ctx, userID)
		e.sess = sess
		return e, err
	}
	return e, s.applyIdentity(ctx, e, userID)
}

func (s *Server) applyIdentity(ctx context.Context, e *entry, userID string) error {
	switch {
	case userID == e.sess.UserID:
		return nil
	case userID == "":
		return e.coord.SignOut(ctx, e.sess)
	default:
		// SignIn signs a different previous user out first.
		return e.coord.SignIn(ctx, e.sess, userID)
	}
}

// sessionCount returns the number of live sessions.
func (s *Server) sessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// warnings flattens joined persistence errors into messages.
func warnings(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, warnings(e)...)
		}
		return out
	}
	return []string{err.Error()}
}

