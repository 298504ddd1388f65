// Package services implements the core query pipeline: utterance
// parsing, station and train-number resolution, temporal filtering and
// search orchestration. Services are synchronous and in-memory; all
// I/O goes through the driven ports.
package services
