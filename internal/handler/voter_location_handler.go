package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/evyataryagoni/voterlocation/internal/logger"
	"github.com/evyataryagoni/voterlocation/internal/models"
	"github.com/evyataryagoni/voterlocation/internal/service"
	"github.com/go-chi/chi/v5/middleware"
)

// IPAddressParam is the query parameter that names the IP address explicitly
const IPAddressParam = "ip_address"

// VoterLocationHandler handles HTTP requests for voter location lookups.
// It only deals with HTTP concerns; resolution rules live in the service.
type VoterLocationHandler struct {
	service *service.VoterLocationService
	logger  *logger.Logger
}

// NewVoterLocationHandler creates a new handler with the given service
func NewVoterLocationHandler(svc *service.VoterLocationService, log *logger.Logger) *VoterLocationHandler {
	if log == nil {
		log = logger.NewDefault()
	}
	return &VoterLocationHandler{
		service: svc,
		logger:  log.WithComponent("VoterLocationHandler"),
	}
}

// RetrieveFromIP handles GET /apis/v1/voterLocationRetrieveFromIP?ip_address=<ip>
// @Summary      Retrieve a voter's location from an IP address
// @Description  Resolves the IP from the ip_address parameter, then X-Forwarded-For, then the peer address, and returns "City, ST ZIP"
// @Tags         Voter Location
// @Produce      json
// @Produce      plain
// @Param        ip_address       query   string  false  "IP address (IPv4 or IPv6)"  example(69.181.21.132)
// @Param        X-Forwarded-For  header  string  false  "Proxy chain, first entry is the client"
// @Success      200  {object}  models.VoterLocationResponse
// @Failure      400  {string}  string  "missing ip_address request parameter | no matching location for IP address <ip>"
// @Failure      429  {object}  models.ErrorResponse  "Rate limit exceeded"
// @Failure      500  {string}  string  "Internal server error"
// @Router       /apis/v1/voterLocationRetrieveFromIP [get]
func (h *VoterLocationHandler) RetrieveFromIP(w http.ResponseWriter, r *http.Request) {
	req := service.LocationRequest{
		ExplicitIP:   r.URL.Query().Get(IPAddressParam),
		ForwardedFor: r.Header.Get("X-Forwarded-For"),
		RemoteAddr:   r.RemoteAddr,
	}

	result, err := h.service.ResolveLocation(r.Context(), req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Voter location lookup failed")
		h.respondText(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !result.Success() {
		h.respondText(w, result.StatusCode(), result.Message)
		return
	}

	h.respondJSON(w, result.StatusCode(), models.VoterLocationResponse{
		Success:       true,
		VoterLocation: result.DisplayLocation,
	})
}

// respondJSON writes a JSON response with the given status code
func (h *VoterLocationHandler) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are already sent, nothing left but logging
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondText writes body verbatim; unlike http.Error no newline is appended
func (h *VoterLocationHandler) respondText(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)

	if _, err := io.WriteString(w, body); err != nil {
		h.logger.Error().Err(err).Int("status", statusCode).Msg("Failed to write response")
	}
}
