// Package service wires PDF extraction, batched embedding and the local
// vector store into reusable indexing operations.
//
// This package is intended for embedding the indexer into other programs
// without shelling out to the CLI.
package service
