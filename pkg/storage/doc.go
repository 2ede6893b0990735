// Package storage owns the persisted layout of one output root and the
// dataset model it stores.
//
// Layout:
//
//	categories/<sanitized-name>/questions.json   one CategoryDataset per category
//	metadata/categories.json                     the known category list
//	metadata/download_summary.json               the last run's summary
//	tokens/global_token.json                     the session token
//
// Every file is human-indented UTF-8 JSON, written atomically via a
// temporary file and rename so an interrupted run never leaves a partial
// file behind. Corrupt files are treated as missing with a warning; they
// are never fatal.
//
// Category directory names come from SanitizeCategoryName, which is a
// many-to-one mapping. SetCategories detects collisions between distinct
// categories and appends the numeric id so two categories never silently
// share a directory.
package storage
