// Package models defines the domain entities exchanged between the catalog
// store, the discovery provider, and the wire protocol.
//
// [Track] is the central entity: its yt_id is the stable natural key, every
// other field is mutable metadata or user data. [Collection] is a value
// pairing a storage location with a cached track count; sessions replace it
// wholesale when switching collections.
package models

import (
	"fmt"

	"github.com/desertthunder/stereo/internal/shared"
)

// Track is a single entry in a collection, keyed by its video id.
//
// Optional fields are pointers so that absent and zero values survive a
// round trip through the wire format and the catalog store unchanged.
type Track struct {
	YTID string `json:"yt_id"`
	// BPID is the external catalog's numeric track id. It crosses the wire
	// as a string: JavaScript clients would otherwise round it through
	// float64 and lose precision.
	BPID *NumericID `json:"bp_id,omitempty"`
	MBID *string    `json:"mb_id,omitempty"`

	Title       string   `json:"title"`
	MixName     *string  `json:"mix_name,omitempty"`
	Artists     []string `json:"artists"`
	ReleaseDate *Date    `json:"release_date,omitempty"`
	Label       *string  `json:"label,omitempty"`
	Album       *string  `json:"album,omitempty"`
	Length      *int     `json:"length,omitempty"` // in seconds
	BPM         *int     `json:"bpm,omitempty"`
	Genre       *string  `json:"genre,omitempty"`
	Key         *string  `json:"key,omitempty"`
	Mood        *string  `json:"mood,omitempty"`

	// user data
	Rating     *int  `json:"rating,omitempty"`
	PlayCount  int   `json:"play_count"`
	LastPlayed *Date `json:"last_played,omitempty"`
}

// Validate checks that the track carries its natural key and display fields.
// Failures wrap [shared.ErrInvalidInput].
func (t *Track) Validate() error {
	if t.YTID == "" {
		return fmt.Errorf("%w: track is missing yt_id", shared.ErrInvalidInput)
	}
	if t.Title == "" {
		return fmt.Errorf("%w: track %s is missing a title", shared.ErrInvalidInput, t.YTID)
	}
	if len(t.Artists) == 0 {
		return fmt.Errorf("%w: track %s has no artists", shared.ErrInvalidInput, t.YTID)
	}
	return nil
}

// Collection is a storage location plus a cached track count.
type Collection struct {
	Path string `json:"path"`
	Size int    `json:"size"`
}

// SortItem is one column of a sort specification, in wire field names.
type SortItem struct {
	Column    string `json:"colId"`
	Direction string `json:"sort"` // "asc" or "desc"
}

// Filter operators understood by the catalog store.
const (
	FilterEquals   = "equals"
	FilterContains = "contains"
	FilterBlank    = "blank"
	FilterNotBlank = "notBlank"
)

// FilterCondition is a single predicate against one field.
type FilterCondition struct {
	FilterType string `json:"filterType"`
	Type       string `json:"type"`
	Filter     any    `json:"filter,omitempty"`
}

// FilterNode is either a single condition or a boolean combination of
// conditions against one field. A non-empty Operator marks the combined form.
type FilterNode struct {
	FilterType string            `json:"filterType"`
	Type       string            `json:"type,omitempty"`
	Filter     any               `json:"filter,omitempty"`
	Operator   string            `json:"operator,omitempty"` // "AND" or "OR"
	Conditions []FilterCondition `json:"conditions,omitempty"`
}

// Combined reports whether the node is a boolean combination of conditions.
func (n FilterNode) Combined() bool {
	return n.Operator != ""
}

// FilterModel maps field names to their filter nodes. A nil or empty model
// matches every row.
type FilterModel map[string]FilterNode
