// Package config provides loading and environment overlay for Tern server
// configuration. It exposes a Default() baseline, file loading for JSON and
// YAML, and a TERN_* environment overlay applied on top.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/tern.yaml"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
package config
