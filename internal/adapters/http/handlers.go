package http

import (
	"errors"
	"io"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/uydev/Hermes/internal/auth"
)

type Handlers struct {
	Issuer   *auth.Issuer
	Verifier *auth.Verifier
	Grants   *auth.GrantIssuer
}

type guestAuthRequest struct {
	DisplayName string `json:"displayName"`
	Room        string `json:"room"`
	DesiredRole string `json:"desiredRole"`
}

// Room is a pointer so an omitted field (join the credential's room)
// is distinguishable from a present-but-blank one (a 400).
type roomsJoinRequest struct {
	Room *string `json:"room"`
}

type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Issues  []auth.FieldIssue `json:"issues,omitempty"`
}

var bearerPattern = regexp.MustCompile(`(?i)^Bearer\s+(.+)$`)

func bearerToken(authorization string) string {
	m := bearerPattern.FindStringSubmatch(authorization)
	if m == nil {
		return ""
	}
	return m[1]
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) GuestAuth(c *gin.Context) {
	var req guestAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "BAD_REQUEST",
			Message: "Invalid request body.",
		})
		return
	}

	session, err := h.Issuer.Issue(req.DisplayName, req.Room, req.DesiredRole)
	if err != nil {
		var verr *auth.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, errorResponse{
				Error:   "BAD_REQUEST",
				Message: "Invalid request body.",
				Issues:  verr.Issues,
			})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("guest auth failed")
		c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   "INTERNAL",
			Message: "Server misconfigured.",
		})
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *Handlers) RoomsJoin(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.JSON(http.StatusUnauthorized, errorResponse{
			Error:   "UNAUTHORIZED",
			Message: "Missing Authorization: Bearer <token> header.",
		})
		return
	}

	cred, err := h.Verifier.Verify(token)
	if err != nil {
		var aerr *auth.AuthError
		if errors.As(err, &aerr) {
			c.JSON(http.StatusUnauthorized, errorResponse{
				Error:   "UNAUTHORIZED",
				Message: "Invalid or expired guest credential.",
			})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("credential verification failed")
		c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   "INTERNAL",
			Message: "Server misconfigured.",
		})
		return
	}

	// Body is optional; an empty body means "join the credential's room".
	var req roomsJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "BAD_REQUEST",
			Message: "Invalid request body.",
		})
		return
	}

	var requestedRoom string
	if req.Room != nil {
		normalized, issues := auth.NormalizeRoom(*req.Room)
		if len(issues) > 0 {
			c.JSON(http.StatusBadRequest, errorResponse{
				Error:   "BAD_REQUEST",
				Message: "Invalid request body.",
				Issues:  issues,
			})
			return
		}
		requestedRoom = normalized
	}

	grant, err := h.Grants.Issue(cred, requestedRoom)
	if err != nil {
		var verr *auth.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, errorResponse{
				Error:   "BAD_REQUEST",
				Message: "Invalid request body.",
				Issues:  verr.Issues,
			})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("room grant failed")
		c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   "INTERNAL",
			Message: "Server misconfigured.",
		})
		return
	}

	c.JSON(http.StatusOK, grant)
}
