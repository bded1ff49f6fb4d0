package tui

import "errors"

// ErrMissingContentService is returned when the content service is not provided.
var ErrMissingContentService = errors.New("tui: content service is required")

// ErrMissingGenerationService is returned when the generation service is not provided.
var ErrMissingGenerationService = errors.New("tui: generation service is required")

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("tui: document service is required")

// ErrNoProposalService is reported when the proposal is requested without a service.
var ErrNoProposalService = errors.New("tui: proposal service not configured")
