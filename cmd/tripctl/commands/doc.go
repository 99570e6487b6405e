// Package commands defines the tripctl CLI, a terminal client for a trip kept in
// a shared store.
//
// Commands
//
//   - expense add <description> <amount> <payer>   Record an expense
//   - expense rm <id>                              Remove an expense
//   - expense ls                                   List expenses with totals
//   - squad add <name>                             Add a member
//   - squad rm <id>                                Remove a member
//   - squad ls                                     List members
//   - squad defaults                               Fill an empty squad with the default roster
//   - settle                                       Print who pays whom
//
// # Implementation
//
// The root command loads the configuration and binds the trip before any
// subcommand runs, waits for the first remote state, and flushes pending writes
// once the subcommand returns. The store comes from TRIPSYNC_STORE, so the CLI
// is only useful against a shared backend such as postgres.
package commands
