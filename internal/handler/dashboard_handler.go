package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parentpanel/gateway/internal/joincode"
	"github.com/parentpanel/gateway/internal/model"
	"github.com/parentpanel/gateway/internal/parentpanel"
	"github.com/parentpanel/gateway/internal/response"
	"github.com/parentpanel/gateway/internal/service"
	"github.com/parentpanel/gateway/internal/validator"
	"github.com/rs/zerolog"
)

// DashboardHandler serves the data behind the subject dashboard.
type DashboardHandler struct {
	dashboardService *service.DashboardService
	log              zerolog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		log:              log.With().Str("component", "dashboard_handler").Logger(),
	}
}

// GetDashboard godoc
// GET /api/v1/dashboard/:code
// Verifies the join code and returns class, subject and child name.
// A rejected code is still a 200: the dashboard renders the message.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	var uri model.CodeURI
	if fields := validator.BindURI(c, &uri); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidJoinCode, fields)
		return
	}

	h.respondDashboard(c, uri.Code, joincode.SubjectNone)
}

// GetSubjectDashboard godoc
// GET /api/v1/dashboard/:code/:subject
// Same as GetDashboard; flags when the URL subject is not the class subject
// so the client can redirect. A bad code is INVALID_JOIN_CODE, an unknown
// subject is VALIDATION_ERROR.
func (h *DashboardHandler) GetSubjectDashboard(c *gin.Context) {
	var code model.CodeURI
	if fields := validator.BindURI(c, &code); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidJoinCode, fields)
		return
	}

	var uri model.SubjectURI
	if fields := validator.BindURI(c, &uri); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.respondDashboard(c, uri.Code, joincode.ParseSubject(uri.Subject))
}

func (h *DashboardHandler) respondDashboard(c *gin.Context, code string, requested joincode.Subject) {
	v := h.dashboardService.Resolve(c.Request.Context(), code)
	if v.FormatError() {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidJoinCode)
		return
	}

	res := model.DashboardResponse{
		Status:    string(v.Status),
		Code:      v.Code,
		Subject:   string(v.Subject),
		ChildName: v.ChildName,
		Class:     v.Class,
		Message:   v.Message,
	}
	if v.StartsIn != nil {
		secs := int64(v.StartsIn.Seconds())
		res.StartsInSeconds = &secs
	}
	if requested != joincode.SubjectNone && v.Status == service.VerifyOK && requested != v.Subject {
		res.SubjectMismatch = true
	}

	response.Success(c, http.StatusOK, res)
}

// GetLastSession godoc
// GET /api/v1/dashboard/:code/session
// Returns homework, slides and recap of the previous session.
func (h *DashboardHandler) GetLastSession(c *gin.Context) {
	var uri model.CodeURI
	if fields := validator.BindURI(c, &uri); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidJoinCode, fields)
		return
	}

	data, err := h.dashboardService.LastSession(c.Request.Context(), uri.Code)
	if err != nil {
		h.failUpstream(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.SessionDetailsResponse{Code: uri.Code, Session: data})
}

// GetHeader godoc
// GET /api/v1/header
// Returns the progress counters of the dashboard header. Needs a token.
func (h *DashboardHandler) GetHeader(c *gin.Context) {
	data, err := h.dashboardService.Header(c.Request.Context())
	if err != nil {
		h.failUpstream(c, err)
		return
	}

	response.Success(c, http.StatusOK, model.HeaderResponse{Progress: data})
}

// failUpstream maps upstream errors to parent-facing responses; the raw
// error is only logged.
func (h *DashboardHandler) failUpstream(c *gin.Context, err error) {
	var rejected *service.RejectedError
	switch {
	case errors.Is(err, parentpanel.ErrTokenMissing):
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
	case errors.As(err, &rejected):
		response.FailWithMessage(c, http.StatusUnprocessableEntity, response.ErrUpstreamRejected, rejected.Message)
	default:
		h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("Upstream call failed")
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrUpstreamUnavailable, parentpanel.Message(err))
	}
}
