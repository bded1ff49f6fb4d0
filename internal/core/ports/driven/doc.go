// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ContentSource: Retrieves report contents (streamed or in one request)
//   - TemplateStore: Loads per-page, full-document and proposal templates
//   - DocumentRenderer: Binds data into a DOCX/PPTX template
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - PDFConverter: Converts rendered documents to PDF. Without it, only DOCX artifacts are produced.
//   - ExtractionService: Backs the batch proposal. Without it, proposals are unavailable.
//   - ContentsStore: Caches retrieved contents between runs.
//   - ArtifactStore: Persists generations and artifacts.
//   - TextNormaliser: Splits bullet text into list items.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
