// Package unifyiq joins two independently sourced tabular datasets, account
// records and issue records, into one unified per-account view, and derives
// portfolio metrics from it.
//
// The core functionalities include:
//   - Normalization: Canonicalizing raw account and issue fields (dates,
//     priority, status) into a fixed vocabulary.
//   - Entity Mapping: Building a synthetic link between issue groups
//     ("epics") and accounts when no real foreign key exists.
//   - Unification: Joining normalized accounts with their mapped issues and
//     computing per-account rollups (open issue counts per priority,
//     last issue date).
//   - Insights: Pure query functions over the unified collection such as
//     top-revenue, renewals due soon, critical thresholds, a portfolio
//     summary, and group-by aggregations.
//
// Every call recomputes the unified view from a fresh fetch of the raw
// source; nothing is persisted or cached between requests.
//
// This package serves as the foundational logic for the `uiq` command-line
// tool and the HTTP service in the server package. The natural-language
// query agent built on top of it lives in the agent package.
package unifyiq
