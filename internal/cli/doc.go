// Package cli holds the helpers shared by the spotivol commands: typed
// errors with actionable guidance, connection error classification and the
// table, JSON and YAML output of status and profile listings.
//
// Tables are rendered with go-pretty. JSON and YAML output use the same
// structs, so scripts can rely on stable field names:
//
//	spotivol auth status -o json
//	spotivol profile list -o yaml
package cli
