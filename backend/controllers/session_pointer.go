package controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

const practiceSessionCookie = "clements_practice_session"

const practiceSessionMaxAge = 4 * time.Hour

// cookiePointer implements engine.SessionPointer over the request cookie.
// It is the only place the active-test slot touches I/O; the engine just
// sees the interface.
type cookiePointer struct {
	c *fiber.Ctx
}

func newCookiePointer(c *fiber.Ctx) *cookiePointer {
	return &cookiePointer{c: c}
}

func (p *cookiePointer) ActiveTest() (uint, bool) {
	raw := p.c.Cookies(practiceSessionCookie)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (p *cookiePointer) SetActiveTest(id uint) {
	p.c.Cookie(&fiber.Cookie{
		Name:     practiceSessionCookie,
		Value:    strconv.FormatUint(uint64(id), 10),
		HTTPOnly: true,
		MaxAge:   int(practiceSessionMaxAge.Seconds()),
	})
}

func (p *cookiePointer) Clear() {
	p.c.Cookie(&fiber.Cookie{
		Name:     practiceSessionCookie,
		Value:    "",
		HTTPOnly: true,
		Expires:  time.Now().Add(-time.Hour),
	})
}
