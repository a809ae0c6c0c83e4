// Package gsd converts a GSD command bundle, as laid down in .claude/ by the
// get-shit-done-cc installer, into an Antigravity skill directory.
//
// The pipeline is a fixed sequence driven by two static tables:
// DefaultMappings decides which subtrees are copied where, and DefaultRules
// decides how references and branding inside the copied markdown and JSON
// files are rewritten. Converter.Run strings the steps together; every step is
// also exported so it can be exercised on its own.
package gsd
