// Package render writes a lockfile.Descriptor in the formats the CLI offers.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/4throck/lcu-connector/internal/lockfile"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for a format not listed in Formats.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported output formats.
var Formats = []string{"json", "yaml", "env", "url"}

// Supported reports whether Write accepts format.
func Supported(format string) bool {
	switch strings.ToLower(format) {
	case "json", "yaml", "yml", "env", "url":
		return true
	}
	return false
}

// Write renders d to w in the given format.
func Write(w io.Writer, d lockfile.Descriptor, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(d), "encoding json")
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return errors.Wrap(err, "encoding yaml")
		}
		return errors.Wrap(enc.Close(), "encoding yaml")
	case "env":
		return writeEnv(w, d)
	case "url":
		_, err := fmt.Fprintf(w, "%s\nAuthorization: %s\n", d.BaseURL(), d.AuthorizationHeader())
		return err
	default:
		return errors.Wrapf(ErrUnknownFormat, "%q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// writeEnv emits shell-sourceable assignments.
func writeEnv(w io.Writer, d lockfile.Descriptor) error {
	vars := []struct {
		key, value string
	}{
		{"LCU_PROCESS", d.Process},
		{"LCU_PID", fmt.Sprint(d.PID)},
		{"LCU_PORT", fmt.Sprint(d.Port)},
		{"LCU_PASSWORD", d.Password},
		{"LCU_PROTOCOL", d.Protocol},
		{"LCU_USERNAME", d.Username},
		{"LCU_ADDRESS", d.Address},
		{"LCU_AUTH", d.Auth},
		{"LCU_URL", d.BaseURL()},
	}
	for _, v := range vars {
		if _, err := fmt.Fprintf(w, "%s=%s\n", v.key, shellQuote(v.value)); err != nil {
			return err
		}
	}
	return nil
}

func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./:=+", r))
	}) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
