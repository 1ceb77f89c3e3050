// Package secrets redacts credentials from document text before it is
// indexed, using the Gitleaks rule set.
//
// Detected values are replaced with [REDACTED:rule-id] markers so the
// surrounding prose still embeds meaningfully. An optional TOML allowlist
// exempts known-safe values:
//
//	[allowlist]
//	regexes = ['''EXAMPLE-KEY-[0-9]+''']
package secrets
