package controller

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/mailto-campaigns/internal/auth"
	"github.com/unclebandit/mailto-campaigns/internal/metrics"
)

type AuthController struct {
	Gate    *auth.Gate
	Metrics *metrics.Metrics
	Log     logrus.FieldLogger
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, c.Log, err)
		return
	}

	token, err := c.Gate.Login(body.Password)
	c.Metrics.AdminLogin(err == nil)
	if err != nil {
		logFor(c.Log).WithField("ip", r.RemoteAddr).Warn("admin login rejected")
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "invalid password"})
		return
	}

	c.Gate.SetCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	c.Gate.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
