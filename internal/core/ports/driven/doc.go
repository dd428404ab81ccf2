// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Backend: upload calls, result polling, preview and result download
//   - Transport: one live update channel bound to a job id
//   - TransportFactory: creates the workflow's transport variant
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SpreadsheetReader: local preview of a selected Excel file.
//     Without it, the pre-submission preview is simply unavailable.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
