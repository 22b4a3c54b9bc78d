// Package log holds the attribute keys shared by structured log records.
package log

// Attribute keys used in structured log records.
const (
	Count    = "count"
	Duration = "duration"
	Error    = "error"
	Match    = "match"
	Mode     = "mode"
	Op       = "op"
	Path     = "path"
	Registry = "registry"
	Seq      = "seq"
	Type     = "type"
	Workers  = "workers"
)
