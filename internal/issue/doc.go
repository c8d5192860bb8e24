// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// It defines a registry of known failure modes (unreadable module, malformed
// source, suspected import cycle, ...) with Markdown-formatted remediation
// guidance, plus an ActionableError type that carries operation, resource and
// fix suggestions alongside the underlying cause.
package issue
