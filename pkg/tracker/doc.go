// Package tracker reads the Final Fantasy IV Free Enterprise tracking
// block out of device memory: seed flags and key item placements. An
// optional HTTP server polls the block and serves the latest snapshot.
package tracker
