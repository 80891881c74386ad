// SPDX-License-Identifier: GPL-3.0-or-later

package zsock

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/bassosimone/runtimex"
)

// EndpointReason explains why an address string is not a valid [Endpoint].
type EndpointReason int

// Reasons for [KindInvalidEndpoint].
const (
	ReasonEmpty EndpointReason = iota + 1
	ReasonMissingSeparator
	ReasonUnknownScheme
	ReasonEmptyAddress
	ReasonMissingPort
	ReasonMissingHost
	ReasonInvalidHost
	ReasonInvalidPort
	ReasonPortOutOfRange
	ReasonEphemeralPort
)

var reasonTexts = map[EndpointReason]string{
	ReasonEmpty:            "empty endpoint",
	ReasonMissingSeparator: `missing "://" separator`,
	ReasonUnknownScheme:    "unknown scheme",
	ReasonEmptyAddress:     "empty address",
	ReasonMissingPort:      "missing port",
	ReasonMissingHost:      "missing host",
	ReasonInvalidHost:      "invalid host",
	ReasonInvalidPort:      "invalid port",
	ReasonPortOutOfRange:   "port out of range",
	ReasonEphemeralPort:    "ephemeral port not allowed",
}

// String implements [fmt.Stringer].
func (r EndpointReason) String() string {
	if text, found := reasonTexts[r]; found {
		return text
	}
	return fmt.Sprintf("EndpointReason(%d)", int(r))
}

// Transport schemes.
const (
	SchemeTCP    = "tcp"
	SchemeIPC    = "ipc"
	SchemeInproc = "inproc"
	SchemePGM    = "pgm"
	SchemeEPGM   = "epgm"
)

var knownSchemes = map[string]bool{
	SchemeTCP:    true,
	SchemeIPC:    true,
	SchemeInproc: true,
	SchemePGM:    true,
	SchemeEPGM:   true,
}

// Endpoint is a validated scheme://address pair. The zero value is not valid.
type Endpoint struct {
	address string
	host    string
	port    uint16
	scheme  string
}

// Scheme returns the transport scheme (e.g., "tcp").
func (ep Endpoint) Scheme() string {
	return ep.scheme
}

// Address returns the part following "://".
func (ep Endpoint) Address() string {
	return ep.address
}

// Host returns the tcp host without brackets, or "" for other schemes.
func (ep Endpoint) Host() string {
	return ep.host
}

// Port returns the tcp port, or 0 for other schemes.
func (ep Endpoint) Port() uint16 {
	return ep.port
}

// String returns the scheme://address form, which parses back to ep.
func (ep Endpoint) String() string {
	return ep.scheme + "://" + ep.address
}

// EndpointParser parses address strings into [Endpoint] values.
//
// The zero value is ready to use and rejects the tcp port 0.
type EndpointParser struct {
	// AllowEphemeralPort allows the tcp port 0, which asks the system to pick
	// a port when binding. Use [*Socket.LastEndpoint] to learn the port.
	AllowEphemeralPort bool
}

// ParseEndpoint parses s using a zero [EndpointParser].
func ParseEndpoint(s string) (Endpoint, error) {
	return EndpointParser{}.Parse(s)
}

// MustParseEndpoint is like [ParseEndpoint] but panics on failure.
func MustParseEndpoint(s string) Endpoint {
	return runtimex.PanicOnError1(ParseEndpoint(s))
}

// Parse parses s, which must have the scheme://address form.
//
// Parsing is purely syntactic. On failure, the error is an [*Error]
// with [KindInvalidEndpoint] and the [EndpointReason].
func (p EndpointParser) Parse(s string) (Endpoint, error) {
	if s == "" {
		return Endpoint{}, newEndpointError(s, ReasonEmpty)
	}
	scheme, address, found := strings.Cut(s, "://")
	if !found {
		return Endpoint{}, newEndpointError(s, ReasonMissingSeparator)
	}
	if !knownSchemes[scheme] {
		return Endpoint{}, newEndpointError(s, ReasonUnknownScheme)
	}
	if address == "" {
		return Endpoint{}, newEndpointError(s, ReasonEmptyAddress)
	}
	ep := Endpoint{address: address, scheme: scheme}
	if scheme != SchemeTCP {
		return ep, nil
	}
	host, port, reason := p.parseHostPort(address)
	if reason != 0 {
		return Endpoint{}, newEndpointError(s, reason)
	}
	ep.host, ep.port = host, port
	return ep, nil
}

// parseHostPort validates a tcp host:port address.
func (p EndpointParser) parseHostPort(address string) (string, uint16, EndpointReason) {
	idx := strings.LastIndexByte(address, ':')
	if idx < 0 || idx == len(address)-1 {
		return "", 0, ReasonMissingPort
	}
	host, portString := address[:idx], address[idx+1:]

	switch {
	case host == "":
		return "", 0, ReasonMissingHost
	case strings.HasPrefix(host, "["):
		inner, ok := strings.CutSuffix(host[1:], "]")
		addr, err := netip.ParseAddr(inner)
		if !ok || err != nil || !addr.Is6() {
			return "", 0, ReasonInvalidHost
		}
		host = inner
	case strings.ContainsAny(host, ":[]"):
		return "", 0, ReasonInvalidHost
	}

	port, err := strconv.ParseUint(portString, 10, 16)
	switch {
	case errors.Is(err, strconv.ErrRange):
		return "", 0, ReasonPortOutOfRange
	case err != nil:
		return "", 0, ReasonInvalidPort
	case port == 0 && !p.AllowEphemeralPort:
		return "", 0, ReasonEphemeralPort
	}
	return host, uint16(port), 0
}

func newEndpointError(input string, reason EndpointReason) *Error {
	return &Error{Kind: KindInvalidEndpoint, Op: OpParseEndpoint, Reason: reason, Input: input}
}
