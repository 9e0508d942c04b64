package rag

import "errors"

var (
	// ErrEmptyBatch means chunking plus embedding produced nothing to store.
	ErrEmptyBatch = errors.New("no embedded chunks produced")

	// ErrFaqGeneration covers every fatal FAQ generation failure: the model
	// call failed, or its response was not a usable question list.
	ErrFaqGeneration = errors.New("faq generation failed")
)
