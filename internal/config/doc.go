// Package config provides configuration management for contactscan.
//
// Configuration flows from three sources, in increasing precedence:
//
//  1. Compiled-in defaults (NewConfig)
//  2. The optional .contactscan YAML file (per-site overrides)
//  3. CLI flags
//
// The resulting Config is passed through the application by dependency
// injection; there is no global configuration state. Validation happens
// once, after flag parsing and before any network activity, and returns
// sentinel errors usable with errors.Is.
package config
