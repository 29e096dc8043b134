// Package flash carries one-shot notifications across a redirect.
//
// Messages added during a request are shown by the page rendered in that same
// request; whatever is left when the handler returns is parked in the cache
// under the visitor's flash cookie and shown by the next page.
package flash

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"contact-agenda/pkg/cache"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

const (
	contextKey = "flash"
	keyPrefix  = "flash:"
)

type bag struct {
	messages []Message
}

// Store persists undelivered messages in the cache.
type Store struct {
	cache      cache.Cache
	cookieName string
	ttl        time.Duration
	secure     bool
}

func NewStore(c cache.Cache, cookieName string, ttl time.Duration, secure bool) *Store {
	return &Store{cache: c, cookieName: cookieName, ttl: ttl, secure: secure}
}

// Middleware loads pending messages before the handler and saves leftovers after it.
func (s *Store) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(s.cookieName)
		if _, perr := uuid.Parse(id); err != nil || perr != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(s.cookieName, id, 0, "/", "", s.secure, true)
		}

		b := &bag{}
		ctx := c.Request.Context()
		found, err := s.cache.Get(ctx, keyPrefix+id, &b.messages)
		if err != nil {
			log.Warn().Err(err).Msg("flash: load failed")
		}
		if found {
			_ = s.cache.Delete(ctx, keyPrefix+id)
		}

		c.Set(contextKey, b)
		c.Next()

		if len(b.messages) == 0 {
			return
		}
		if err := s.cache.Set(ctx, keyPrefix+id, b.messages, s.ttl); err != nil {
			log.Warn().Err(err).Msg("flash: save failed")
		}
	}
}

func current(c *gin.Context) *bag {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	b, _ := v.(*bag)
	return b
}

// Add queues a message for the visitor.
func Add(c *gin.Context, level Level, text string) {
	if b := current(c); b != nil {
		b.messages = append(b.messages, Message{Level: level, Text: text})
	}
}

func Success(c *gin.Context, text string) { Add(c, LevelSuccess, text) }

func Error(c *gin.Context, text string) { Add(c, LevelError, text) }

// Pop returns and clears the queued messages. Pages call it while rendering.
func Pop(c *gin.Context) []Message {
	b := current(c)
	if b == nil {
		return nil
	}
	msgs := b.messages
	b.messages = nil
	return msgs
}
