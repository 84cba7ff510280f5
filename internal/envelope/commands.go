package envelope

import (
	"fmt"

	"github.com/desertthunder/stereo/internal/models"
)

// Heartbeat is echoed back verbatim; it travels in both directions.
type Heartbeat struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

func (Heartbeat) CommandType() string { return TypeHeartbeat }
func (Heartbeat) EventType() string   { return TypeHeartbeat }

// NewHeartbeat builds a heartbeat echo.
func NewHeartbeat(timestamp int64) *Heartbeat {
	return &Heartbeat{Type: TypeHeartbeat, Timestamp: timestamp}
}

// AddTrack inserts one track into the active collection.
type AddTrack struct {
	Type              string       `json:"type"`
	Track             models.Track `json:"track"`
	OverwriteExisting bool         `json:"overwrite_existing"`
}

func (AddTrack) CommandType() string { return TypeAddTrack }

func (c *AddTrack) validate() error {
	return c.Track.Validate()
}

// AddTracks inserts a batch of tracks into the active collection.
type AddTracks struct {
	Type              string         `json:"type"`
	Tracks            []models.Track `json:"tracks"`
	OverwriteExisting bool           `json:"overwrite_existing"`
}

func (AddTracks) CommandType() string { return TypeAddTracks }

func (c *AddTracks) validate() error {
	for i := range c.Tracks {
		if err := c.Tracks[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTracks removes tracks by id from the active collection.
type DeleteTracks struct {
	Type string   `json:"type"`
	IDs  []string `json:"ids"`
}

func (DeleteTracks) CommandType() string { return TypeDeleteTracks }

// UpdateRating sets or clears a track's rating.
type UpdateRating struct {
	Type   string `json:"type"`
	YTID   string `json:"yt_id"`
	Rating *int   `json:"rating"`
}

func (UpdateRating) CommandType() string { return TypeUpdateRating }

func (c *UpdateRating) validate() error {
	if c.YTID == "" {
		return fmt.Errorf("update-rating requires yt_id")
	}
	return nil
}

// IncPlayCount bumps a track's play count and stamps its last-played date.
type IncPlayCount struct {
	Type string `json:"type"`
	YTID string `json:"yt_id"`
}

func (IncPlayCount) CommandType() string { return TypeIncPlayCount }

func (c *IncPlayCount) validate() error {
	if c.YTID == "" {
		return fmt.Errorf("inc-play-count requires yt_id")
	}
	return nil
}

// GetTrackInfo requests the full record for one track.
type GetTrackInfo struct {
	Type string `json:"type"`
	YTID string `json:"yt_id"`
}

func (GetTrackInfo) CommandType() string { return TypeGetTrackInfo }

// GetRandomTrack requests a random track from the active collection.
type GetRandomTrack struct {
	Type string `json:"type"`
}

func (GetRandomTrack) CommandType() string { return TypeGetRandomTrack }

// GetRows requests a filtered, sorted row window plus the total match count.
type GetRows struct {
	Type        string             `json:"type"`
	ID          int                `json:"id"`
	StartRow    int                `json:"startRow"`
	EndRow      int                `json:"endRow"`
	SortModel   []models.SortItem  `json:"sortModel,omitempty"`
	FilterModel models.FilterModel `json:"filterModel,omitempty"`
}

func (GetRows) CommandType() string { return TypeGetRows }

func (c *GetRows) validate() error {
	if c.StartRow < 0 || c.EndRow < c.StartRow {
		return fmt.Errorf("get-rows has invalid row window [%d, %d)", c.StartRow, c.EndRow)
	}
	return nil
}

// CollectionContainsID asks whether a track id is already in the collection.
type CollectionContainsID struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
	YTID string `json:"yt_id"`
}

func (CollectionContainsID) CommandType() string { return TypeCollectionContainsID }

// SetCollection switches the session to the collection at the given path.
type SetCollection struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
	Path string `json:"path"`
}

func (SetCollection) CommandType() string { return TypeSetCollection }

func (c *SetCollection) validate() error {
	if c.Path == "" {
		return fmt.Errorf("set-collection requires a path")
	}
	return nil
}

// CreateCollection creates a fresh collection file and makes it active.
type CreateCollection struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

func (CreateCollection) CommandType() string { return TypeCreateCollection }

func (c *CreateCollection) validate() error {
	if c.Path == "" {
		return fmt.Errorf("create-collection requires a path")
	}
	return nil
}

// GetPathCompletions requests filesystem completions for a path prefix.
type GetPathCompletions struct {
	Type       string `json:"type"`
	ID         int    `json:"id"`
	PathPrefix string `json:"path_prefix"`
}

func (GetPathCompletions) CommandType() string { return TypeGetPathCompletions }

// Search starts a discovery query, superseding any running one.
type Search struct {
	Type    string `json:"type"`
	Query   string `json:"query"`
	QueryID int    `json:"query_id"`
	Limit   int    `json:"limit"`
	Kind    string `json:"kind,omitempty"`
}

func (Search) CommandType() string { return TypeSearch }

func (c *Search) validate() error {
	switch c.Kind {
	case "":
		c.Kind = SearchKindFuzzy
	case SearchKindFuzzy, SearchKindByArtist, SearchKindByLabel:
	default:
		return fmt.Errorf("unsupported search kind %q", c.Kind)
	}
	if c.Limit < 0 {
		return fmt.Errorf("search limit must not be negative")
	}
	return nil
}

// SearchCancelAll cancels the session's running search, if any.
type SearchCancelAll struct {
	Type string `json:"type"`
}

func (SearchCancelAll) CommandType() string { return TypeSearchCancelAll }

// SearchTrack looks up the single best discovery match for a title/artist
// pair and reports whether it is already in the collection.
type SearchTrack struct {
	Type   string `json:"type"`
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

func (SearchTrack) CommandType() string { return TypeSearchTrack }

// CheckImportFrom validates an import source without merging it.
type CheckImportFrom struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

func (CheckImportFrom) CommandType() string { return TypeCheckImportFrom }

// ImportFrom merges tracks from a local file or URL into the active
// collection.
type ImportFrom struct {
	Type         string `json:"type"`
	Path         string `json:"path"`
	KeepUserData bool   `json:"keep_user_data"`
}

func (ImportFrom) CommandType() string { return TypeImportFrom }

func (c *ImportFrom) validate() error {
	if c.Path == "" {
		return fmt.Errorf("import-from requires a path")
	}
	return nil
}
