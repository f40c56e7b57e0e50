// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the adrenal-extract
// pipeline: documents, spans, tokens, sentences, measurements, matches,
// annotated output records, findings files, and stage configuration.
//
// Offsets are byte offsets into the original document text throughout, so
// a span produced by any stage can be reported without translation.
package types
