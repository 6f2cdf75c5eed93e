package models

import (
	"fmt"
	"html"
)

const (
	MinRating = 1
	MaxRating = 5
)

type (
	Bookmark struct {
		ID          uint64  `json:"id"`
		Title       string  `json:"title"`
		URL         string  `json:"url"`
		Description *string `json:"description"`
		Rating      *int    `json:"rating"`
	}

	// BookmarkFields is everything a client may set when creating a bookmark.
	BookmarkFields struct {
		Title       string
		URL         string
		Description *string
		Rating      *int
	}

	// BookmarkPatch holds a partial update; nil fields are left untouched.
	BookmarkPatch struct {
		Title       *string
		URL         *string
		Description *string
		Rating      *int
	}

	ValidationError struct {
		Message string
	}
)

func (e *ValidationError) Error() string {
	return e.Message
}

func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

func (f BookmarkFields) Validate() error {
	if f.Title == "" {
		return &ValidationError{Message: "'title' is required"}
	}
	if f.URL == "" {
		return &ValidationError{Message: "'url' is required"}
	}
	return validateRating(f.Rating)
}

// Empty reports whether the patch names none of the updatable fields.
func (p BookmarkPatch) Empty() bool {
	return p.Title == nil && p.URL == nil && p.Description == nil && p.Rating == nil
}

func (p BookmarkPatch) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return &ValidationError{Message: "'title' must not be empty"}
	}
	if p.URL != nil && *p.URL == "" {
		return &ValidationError{Message: "'url' must not be empty"}
	}
	return validateRating(p.Rating)
}

// Apply merges the present fields of p over b.
func (p BookmarkPatch) Apply(b *Bookmark) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.URL != nil {
		b.URL = *p.URL
	}
	if p.Description != nil {
		d := *p.Description
		b.Description = &d
	}
	if p.Rating != nil {
		r := *p.Rating
		b.Rating = &r
	}
}

// Sanitized returns a copy with every free-text field HTML-escaped.
func (b Bookmark) Sanitized() Bookmark {
	out := b
	out.Title = html.EscapeString(b.Title)
	out.URL = html.EscapeString(b.URL)
	if b.Description != nil {
		d := html.EscapeString(*b.Description)
		out.Description = &d
	}
	if b.Rating != nil {
		r := *b.Rating
		out.Rating = &r
	}
	return out
}

func SanitizeAll(bookmarks []Bookmark) []Bookmark {
	out := make([]Bookmark, len(bookmarks))
	for i := range bookmarks {
		out[i] = bookmarks[i].Sanitized()
	}
	return out
}

// RatingRangeError is reported for any rating that is not an integer within range.
func RatingRangeError() *ValidationError {
	return &ValidationError{
		Message: fmt.Sprintf("'rating' must be a number between %d and %d", MinRating, MaxRating),
	}
}

func validateRating(rating *int) error {
	if rating != nil && !ValidRating(*rating) {
		return RatingRangeError()
	}
	return nil
}
