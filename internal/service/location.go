package service

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// MissingIPMessage is returned when no IP address could be found in the request
const MissingIPMessage = "missing ip_address request parameter"

// FailureReason tells why a location could not be resolved
type FailureReason int

const (
	// ReasonNone means the lookup succeeded
	ReasonNone FailureReason = iota
	// ReasonMissingIP means the request carried no IP address at all
	ReasonMissingIP
	// ReasonInvalidOrUnresolvedIP means the IP was malformed or the provider had no match
	ReasonInvalidOrUnresolvedIP
)

func (r FailureReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonMissingIP:
		return "missing_ip"
	case ReasonInvalidOrUnresolvedIP:
		return "invalid_or_unresolved_ip"
	default:
		return fmt.Sprintf("FailureReason(%d)", int(r))
	}
}

// LocationRequest carries the addressing information of an incoming request.
// Empty fields are treated as absent.
type LocationRequest struct {
	ExplicitIP   string // ip_address request parameter
	ForwardedFor string // X-Forwarded-For header
	RemoteAddr   string // socket peer address, with or without port
}

// LocationResult is either a success with a display location or a failure
// with a reason and a user-facing message.
type LocationResult struct {
	IP              string // effective IP, empty for ReasonMissingIP
	DisplayLocation string
	Reason          FailureReason
	Message         string
}

// Success reports whether a location was found
func (r LocationResult) Success() bool {
	return r.Reason == ReasonNone
}

// StatusCode is the HTTP status the result maps to
func (r LocationResult) StatusCode() int {
	if r.Success() {
		return http.StatusOK
	}
	return http.StatusBadRequest
}

func succeeded(ip, display string) LocationResult {
	return LocationResult{IP: ip, DisplayLocation: display}
}

func missingIP() LocationResult {
	return LocationResult{Reason: ReasonMissingIP, Message: MissingIPMessage}
}

func unresolved(ip string) LocationResult {
	return LocationResult{
		IP:      ip,
		Reason:  ReasonInvalidOrUnresolvedIP,
		Message: fmt.Sprintf("no matching location for IP address %s", ip),
	}
}

// EffectiveIP picks the IP address to geolocate.
//
// Precedence: explicit parameter, then the first entry of X-Forwarded-For,
// then the host part of the peer address. Returns "" when none is present.
func EffectiveIP(req LocationRequest) string {
	if ip := strings.TrimSpace(req.ExplicitIP); ip != "" {
		return ip
	}

	// "client, proxy1, proxy2": the originating client comes first
	for _, entry := range strings.Split(req.ForwardedFor, ",") {
		if ip := strings.TrimSpace(entry); ip != "" {
			return ip
		}
	}

	remote := strings.TrimSpace(req.RemoteAddr)
	if remote == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(remote); err == nil {
		return host
	}
	return remote
}
