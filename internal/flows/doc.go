// Package flows holds the per-operation auth flows behind the root engine.
//
// Each flow is a pure function over a deps struct of injected
// collaborators; the root engine wires the deps once at build time and
// delegates. Flows return the host-level sentinel errors carried in their
// Errors set so the root package stays the single error surface.
package flows
