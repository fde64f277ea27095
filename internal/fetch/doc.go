// Package fetch downloads unit sources and archives for the package manager.
// Payloads are streamed in 64 KiB chunks with a single-line progress bar and
// held in memory; nothing is written to disk here.
package fetch
