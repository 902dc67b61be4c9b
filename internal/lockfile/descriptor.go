package lockfile

import (
	"fmt"
	"strconv"
)

const (
	// FileName is the file the client writes into its installation directory.
	FileName = "lockfile"

	// Username is the fixed Basic-Auth user of the client's local API.
	Username = "riot"

	// Address is the loopback address the local API listens on.
	Address = "127.0.0.1"
)

// Descriptor is the parsed lockfile: everything needed to talk to the running
// client's local API. Two descriptors are equal when every field, including
// the derived Auth token, is equal.
//
// A descriptor goes stale as soon as the client restarts and rewrites the
// lockfile.
type Descriptor struct {
	Process  string `json:"process" yaml:"process"`
	PID      uint32 `json:"pid" yaml:"pid"`
	Port     uint32 `json:"port" yaml:"port"`
	Password string `json:"password" yaml:"password"`
	Protocol string `json:"protocol" yaml:"protocol"`
	Username string `json:"username" yaml:"username"`
	Address  string `json:"address" yaml:"address"`
	Auth     string `json:"b64_auth" yaml:"b64_auth"`
}

// BaseURL returns the root URL of the local REST API, e.g. https://127.0.0.1:54835.
func (d Descriptor) BaseURL() string {
	return d.Protocol + "://" + d.host()
}

// WebSocketURL returns the URL of the local event socket.
func (d Descriptor) WebSocketURL() string {
	scheme := "wss"
	if d.Protocol == "http" {
		scheme = "ws"
	}
	return scheme + "://" + d.host() + "/"
}

// AuthorizationHeader returns the value for the Authorization request header.
func (d Descriptor) AuthorizationHeader() string {
	return "Basic " + d.Auth
}

func (d Descriptor) host() string {
	return d.Address + ":" + strconv.FormatUint(uint64(d.Port), 10)
}

// String redacts the password and token.
func (d Descriptor) String() string {
	return fmt.Sprintf("%s (pid %d) at %s as %s", d.Process, d.PID, d.BaseURL(), d.Username)
}

// GoString redacts the password and token.
func (d Descriptor) GoString() string {
	return fmt.Sprintf("lockfile.Descriptor{Process:%q, PID:%d, Port:%d, Password:<redacted>, Protocol:%q, Username:%q, Address:%q, Auth:<redacted>}",
		d.Process, d.PID, d.Port, d.Protocol, d.Username, d.Address)
}
