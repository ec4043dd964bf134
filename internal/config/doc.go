// Package config loads and saves spotivol's YAML configuration.
//
// Configuration lives in config.yaml inside the configuration directory
// (~/.config/spotivol by default). Every field has a default, so a missing file
// is a valid first-run state:
//
//	backend: webapi
//	oauth:
//	  redirectURI: http://localhost:8888/callback
//	  callbackTimeout: 120s
//	local:
//	  processMatch: spotify
//	profiles:
//	  - name: Quiet
//	    volume: 20
//	    hotkey: ctrl+alt+1
//
// Credential and token files are not part of the configuration; they are kept
// in the state directory by the oauth package.
package config
