// Package logging provides opt-in file-based logging with rotation for envdoctor.
// When the --debug flag is set, structured logs are written to ~/.envdoctor/logs/
// for troubleshooting slow or failing probes.
//
// By default (without --debug), nothing is logged below warn level.
package logging
