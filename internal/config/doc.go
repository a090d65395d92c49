// Package config loads, merges and validates the configuration of the
// study-sync server and client.
//
// Sources are read in priority order; a later source only fills fields the
// earlier ones left at their zero value:
//  1. Command-line flags
//  2. Environment variables
//  3. JSON or YAML config file
//
// [GetServerConfig] and [GetClientConfig] return the validated views each
// binary needs.
package config
