package v1

import (
	"github.com/evyataryagoni/voterlocation/internal/handler"
	"github.com/go-chi/chi/v5"
)

// VoterLocationPath is the voter location endpoint, relative to /apis/v1
const VoterLocationPath = "/voterLocationRetrieveFromIP"

// SetupRoutes configures all /apis/v1 routes
func SetupRoutes(locationHandler *handler.VoterLocationHandler) chi.Router {
	r := chi.NewRouter()

	// GET /apis/v1/voterLocationRetrieveFromIP?ip_address=<ip>
	r.Get(VoterLocationPath, locationHandler.RetrieveFromIP)
	// trailing slash form used by existing clients
	r.Get(VoterLocationPath+"/", locationHandler.RetrieveFromIP)

	return r
}
