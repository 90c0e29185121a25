package controller

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/unclebandit/mailto-campaigns/internal/service"
	"github.com/unclebandit/mailto-campaigns/internal/visitor"
)

type SubmissionController struct {
	SubmissionService *service.SubmissionService
	Log               logrus.FieldLogger
}

// LogRequest stores one form submission and hands back the message the
// visitor's mail client should open.
func (c *SubmissionController) LogRequest(w http.ResponseWriter, r *http.Request) {
	var body service.LogRequestInput
	if err := decodeJSON(w, r, &body); err != nil {
		c.SubmissionService.Metrics.SubmissionRejected("malformed")
		writeError(w, r, c.Log, err)
		return
	}

	res, err := c.SubmissionService.Log(r.Context(), body, visitor.FromRequest(r))
	if err != nil {
		writeError(w, r, c.Log, err)
		return
	}

	resp := map[string]any{"success": true}
	if res.Mailto != nil {
		resp["mailto"] = res.Mailto
		resp["thanks_url"] = res.ThanksURL
	}
	writeJSON(w, http.StatusOK, resp)
}
