// Package pbi defines the public surface of the Power BI REST API client:
// configuration, the error taxonomy, the entity graph (workspaces and the
// reports, semantic models, dashboards, users, and apps they contain), and
// the fetch protocol that populates entity collections on demand.
//
// Use github.com/apibeacon/beacon/pkg/beacon to construct a Service.
package pbi
