// Package errors provides the classified error primitives used across sitebuilder.
//
// A ClassifiedError carries a category (config, template, convert, ...), a severity
// and structured context. Values are created through the fluent ErrorBuilder:
//
//	err := errors.TemplateError("fragment unreadable").
//		WithContext("path", headPath).
//		WithCause(readErr).
//		Build()
//
// The CLI adapter maps categories to process exit codes.
package errors
