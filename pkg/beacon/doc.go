// Package beacon is the entry point for creating Power BI API clients.
package beacon
