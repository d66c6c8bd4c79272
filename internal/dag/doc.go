// Package dag builds and validates the dependency graph of a deployment
// stack. Nodes are steps and resources; edges come from explicit depends_on
// lists and from implicit references to other steps' outputs inside HCL
// expressions. The graph is the single source of truth the executor runs.
package dag
