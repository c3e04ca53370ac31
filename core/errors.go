// Copyright 2025 Ansvar Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import "errors"

var (
	// ErrValidation matches any ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound matches any NotFoundError.
	ErrNotFound = errors.New("not found")

	// ErrSearch matches any SearchError.
	ErrSearch = errors.New("search failed")

	// ErrInvalidRegulation indicates a Regulation failed validation.
	ErrInvalidRegulation = errors.New("invalid regulation")

	// ErrInvalidContent indicates a RegulationContent row failed validation.
	ErrInvalidContent = errors.New("invalid regulation content")

	// ErrInvalidStandard indicates a Standard failed validation.
	ErrInvalidStandard = errors.New("invalid standard")

	// ErrInvalidClause indicates a StandardClause failed validation.
	ErrInvalidClause = errors.New("invalid standard clause")

	// ErrInvalidMapping indicates a FrameworkMapping failed validation.
	ErrInvalidMapping = errors.New("invalid framework mapping")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")
)

// ValidationError reports missing or malformed input. The message names the
// offending field and the operation to use instead.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports well-formed input that names a nonexistent entity.
type NotFoundError struct {
	Message string
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// SearchError wraps an unexpected failure of a ranked search.
type SearchError struct {
	Cause error
}

func (e *SearchError) Error() string {
	if e.Cause == nil {
		return "Search failed"
	}
	return "Search failed: " + e.Cause.Error()
}

func (e *SearchError) Unwrap() error { return e.Cause }

func (e *SearchError) Is(target error) bool { return target == ErrSearch }
