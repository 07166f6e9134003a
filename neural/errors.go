package neural

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrModelNotFound indicates the model file does not exist.
	ErrModelNotFound = errors.New("neural: model file not found")

	// ErrInvalidModel indicates the model file exists but could not be
	// loaded as a joint segmentation model.
	ErrInvalidModel = errors.New("neural: invalid model format")

	// ErrVocabFailed indicates vocabulary initialization failed.
	ErrVocabFailed = errors.New("neural: vocabulary initialization failed")
)
