// Package model defines the core data structures for toasty.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// Variant is the severity tag of a toast. It only affects presentation.
type Variant string

const (
	VariantDefault Variant = "default"
	VariantDanger  Variant = "danger"
)

// Urgency levels carried in the freedesktop "urgency" hint.
const (
	UrgencyLow      = 0
	UrgencyNormal   = 1
	UrgencyCritical = 2
)

// ErrInvalidVariant is returned by ParseVariant for unknown variant names.
var ErrInvalidVariant = errors.New("variant must be \"default\" or \"danger\"")

// ParseVariant parses a variant name. The empty string maps to VariantDefault.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case "", VariantDefault:
		return VariantDefault, nil
	case VariantDanger:
		return VariantDanger, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidVariant, s)
	}
}

// VariantForUrgency maps a freedesktop urgency level to a variant.
func VariantForUrgency(urgency int) Variant {
	if urgency == UrgencyCritical {
		return VariantDanger
	}
	return VariantDefault
}

// String implements fmt.Stringer.
func (v Variant) String() string {
	if v == "" {
		return string(VariantDefault)
	}
	return string(v)
}

// Toast is a single user-facing notification record.
type Toast struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Variant     Variant   `json:"variant" yaml:"variant"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// PushData is the caller-supplied part of a toast.
type PushData struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Variant     Variant `json:"variant,omitempty"`
}

// NewToast builds a toast from push data with the given identifier.
// Any variant other than VariantDanger is stored as VariantDefault.
func NewToast(id string, data PushData) Toast {
	variant := VariantDefault
	if data.Variant == VariantDanger {
		variant = VariantDanger
	}
	return Toast{
		ID:          id,
		Title:       data.Title,
		Description: data.Description,
		Variant:     variant,
		CreatedAt:   time.Now(),
	}
}

// IsDanger reports whether the toast uses the danger variant.
func (t *Toast) IsDanger() bool {
	return t.Variant == VariantDanger
}

// DescriptionTruncated returns the description on a single line, with
// whitespace collapsed, cut to at most maxLen display columns.
func (t *Toast) DescriptionTruncated(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	return Truncate(strings.Join(strings.Fields(t.Description), " "), maxLen)
}

// Truncate cuts s to at most maxLen display columns, ending in "..." when
// there is room for it. Cuts fall on character boundaries, and wide
// characters count as two columns. A non-positive maxLen leaves s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}
