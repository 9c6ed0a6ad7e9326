package service

import "github.com/viant/pdfindex/vectordb/sqlitevec"

// IndexRequest defines inputs for indexing.
type IndexRequest struct {
	PDFDir     string
	Collection string
}

// IndexResult summarizes an indexing run.
type IndexResult struct {
	Files      int
	Failed     int
	Chunks     int
	Collection string
	// Total is the collection size after the upsert.
	Total int64
	// NoText is set when no chunk survived extraction; the store is untouched.
	NoText bool
}

// StatsRequest selects the collections to report. An empty Collection
// reports all of them.
type StatsRequest struct {
	Collection string
}

// CollectionStats describes a stored collection.
type CollectionStats = sqlitevec.CollectionInfo
