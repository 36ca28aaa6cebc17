// Package triage provides the business boundary for the AegisSOC
// multi-agent alert triage pipeline. It defines the Orchestrator (the
// fixed load/parse/correlate/propose/validate state machine), the
// Service (session lifecycle, per-incident serialization, dispatch),
// and the domain models for proposals and finalized summaries.
package triage
