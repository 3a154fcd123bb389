package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/bibujohny/rentalAI/internal/constants"
)

// Flash categories map onto the page's alert styles.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// AddFlash queues a message for the next rendered page. Messages queued
// earlier in the same request are kept.
func AddFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	pending := append(readFlashes(r), Flash{Category: category, Message: message})
	raw, err := json.Marshal(pending)
	if err != nil {
		return
	}
	c := &http.Cookie{
		Name:     constants.FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, c)
	// later reads within this request see the new message
	r.AddCookie(c)
}

// PopFlashes returns the queued messages and clears the cookie.
func PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := readFlashes(r)
	if len(flashes) > 0 {
		http.SetCookie(w, &http.Cookie{
			Name:     constants.FlashCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return flashes
}

func readFlashes(r *http.Request) []Flash {
	var c *http.Cookie
	// the newest cookie of that name wins
	for _, ck := range r.Cookies() {
		if ck.Name == constants.FlashCookieName {
			c = ck
		}
	}
	if c == nil || c.Value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var out []Flash
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
