// Package configs embeds the annotated example configuration.
//
// The template documents every setting of .envdoctor.yaml with its default.
// It is printed by `envdoctor config example`; envdoctor never writes it
// into a workspace.
package configs

import _ "embed"

// ProjectConfigExample is an annotated .envdoctor.yaml holding the defaults.
//
//go:embed envdoctor.example.yaml
var ProjectConfigExample string
