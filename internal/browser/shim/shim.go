// internal/browser/shim/shim.go
package shim

import (
	_ "embed"
	"fmt"
	"strings"

	json "github.com/json-iterator/go"
)

const (
	// ConfigPlaceholder is the string replaced in the JS template with the actual JSON configuration.
	ConfigPlaceholder = "/*{{VGRID_BRIDGE_CONFIG}}*/"
)

//go:embed bridge.js
var bridgeTemplate string

// Config is handed to the page bridge.
type Config struct {
	// Binding is the name of the CDP binding the bridge reports through.
	Binding string `json:"binding"`
	// Selector matches the grid containers, in document order.
	Selector string `json:"selector"`
}

// BuildBridge injects the configuration into the template.
func BuildBridge(template, configJSON string) (string, error) {
	if template == "" {
		return "", fmt.Errorf("template is empty")
	}

	if !strings.Contains(template, ConfigPlaceholder) {
		return "", fmt.Errorf("template does not contain the required placeholder: %s", ConfigPlaceholder)
	}

	if configJSON == "" {
		configJSON = "{}"
	}

	script := strings.Replace(template, ConfigPlaceholder, configJSON, 1)
	return script, nil
}

// Template returns the embedded bridge script.
func Template() (string, error) {
	if bridgeTemplate == "" {
		return "", fmt.Errorf("embedded bridge.js template is empty or failed to load")
	}
	return bridgeTemplate, nil
}

// Bridge renders the embedded bridge for cfg.
func Bridge(cfg Config) (string, error) {
	tmpl, err := Template()
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode bridge config: %w", err)
	}
	return BuildBridge(tmpl, string(raw))
}
