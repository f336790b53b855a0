// Package auth contains the access gate consulted on each attach and the
// independent token-issuance subsystem with its credential-expiry table.
package auth
