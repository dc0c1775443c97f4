// Package contract defines the records exchanged between a terminal and the
// store of record, and cached by the terminal. Every record can name its
// identity and validate itself so that malformed rows never reach a cache.
package contract
