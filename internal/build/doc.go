// Package build runs the site pipeline: it walks the source tree, renders
// every document through the mirrored templates, generates the routing
// server and writes everything through an incremental writer.
//
// All execution paths (build command, watch loop, tests) go through Service.
package build
