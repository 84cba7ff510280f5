package envelope

import (
	"github.com/desertthunder/stereo/internal/models"
)

// TrackUpdate echoes a created or modified track.
type TrackUpdate struct {
	Type  string       `json:"type"`
	Track models.Track `json:"track"`
}

func (TrackUpdate) EventType() string { return TypeTrackUpdate }

func NewTrackUpdate(track models.Track) *TrackUpdate {
	return &TrackUpdate{Type: TypeTrackUpdate, Track: track}
}

// ReloadTracks tells the client to refetch its visible rows.
type ReloadTracks struct {
	Type string `json:"type"`
}

func (ReloadTracks) EventType() string { return TypeReloadTracks }

func NewReloadTracks() *ReloadTracks {
	return &ReloadTracks{Type: TypeReloadTracks}
}

// Rows answers a get-rows request with one page and the total match count.
type Rows struct {
	Type    string         `json:"type"`
	ID      int            `json:"id"`
	Rows    []models.Track `json:"rows"`
	LastRow int            `json:"last_row"`
}

func (Rows) EventType() string { return TypeRows }

func NewRows(id int, rows []models.Track, lastRow int) *Rows {
	return &Rows{Type: TypeRows, ID: id, Rows: rows, LastRow: lastRow}
}

// BackendInfo announces the server version on connect.
type BackendInfo struct {
	Type    string `json:"type"`
	Version string `json:"version"`
}

func (BackendInfo) EventType() string { return TypeBackendInfo }

func NewBackendInfo(version string) *BackendInfo {
	return &BackendInfo{Type: TypeBackendInfo, Version: version}
}

// TrackInfo answers a get-track-info request.
type TrackInfo struct {
	Type  string       `json:"type"`
	Track models.Track `json:"track"`
}

func (TrackInfo) EventType() string { return TypeTrackInfo }

func NewTrackInfo(track models.Track) *TrackInfo {
	return &TrackInfo{Type: TypeTrackInfo, Track: track}
}

// CollectionInfo carries the active collection snapshot, or an error with
// path completions when switching to an invalid collection failed.
type CollectionInfo struct {
	Type            string             `json:"type"`
	ID              *int               `json:"id,omitempty"`
	Collection      *models.Collection `json:"collection,omitempty"`
	ErrorMessage    string             `json:"error_message,omitempty"`
	PathCompletions []string           `json:"path_completions,omitempty"`
}

func (CollectionInfo) EventType() string { return TypeCollectionInfo }

func NewCollectionInfo(collection models.Collection) *CollectionInfo {
	return &CollectionInfo{Type: TypeCollectionInfo, Collection: &collection}
}

func NewCollectionInfoReply(id int, collection models.Collection) *CollectionInfo {
	return &CollectionInfo{Type: TypeCollectionInfo, ID: &id, Collection: &collection}
}

func NewCollectionInfoError(id int, message string, completions []string) *CollectionInfo {
	return &CollectionInfo{
		Type:            TypeCollectionInfo,
		ID:              &id,
		ErrorMessage:    message,
		PathCompletions: completions,
	}
}

// DefaultCollection announces the server's default collection on connect.
type DefaultCollection struct {
	Type       string            `json:"type"`
	Collection models.Collection `json:"collection"`
}

func (DefaultCollection) EventType() string { return TypeDefaultCollection }

func NewDefaultCollection(collection models.Collection) *DefaultCollection {
	return &DefaultCollection{Type: TypeDefaultCollection, Collection: collection}
}

// PathCompletions answers a get-path-completions request.
type PathCompletions struct {
	Type  string   `json:"type"`
	ID    int      `json:"id"`
	Paths []string `json:"paths"`
}

func (PathCompletions) EventType() string { return TypePathCompletions }

func NewPathCompletions(id int, paths []string) *PathCompletions {
	return &PathCompletions{Type: TypePathCompletions, ID: id, Paths: paths}
}

// SearchResult streams one discovery match for a search correlation id.
type SearchResult struct {
	Type    string       `json:"type"`
	QueryID int          `json:"query_id"`
	Track   models.Track `json:"track"`
}

func (SearchResult) EventType() string { return TypeSearchResult }

func NewSearchResult(queryID int, track models.Track) *SearchResult {
	return &SearchResult{Type: TypeSearchResult, QueryID: queryID, Track: track}
}

// SearchComplete resolves a search correlation id; emitted exactly once per
// search job, including cancelled and failed ones.
type SearchComplete struct {
	Type    string `json:"type"`
	QueryID int    `json:"query_id"`
}

func (SearchComplete) EventType() string { return TypeSearchComplete }

func NewSearchComplete(queryID int) *SearchComplete {
	return &SearchComplete{Type: TypeSearchComplete, QueryID: queryID}
}

// ContainsIDResponse answers a collection-contains-id request.
type ContainsIDResponse struct {
	Type       string `json:"type"`
	ID         int    `json:"id"`
	ContainsID bool   `json:"contains_id"`
}

func (ContainsIDResponse) EventType() string { return TypeContainsIDResponse }

func NewContainsIDResponse(id int, contains bool) *ContainsIDResponse {
	return &ContainsIDResponse{Type: TypeContainsIDResponse, ID: id, ContainsID: contains}
}

// Notification is a user-visible free-text message with a severity tag.
type Notification struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

func (Notification) EventType() string { return TypeNotification }

func NewNotification(message, kind string) *Notification {
	return &Notification{Type: TypeNotification, Message: message, Kind: kind}
}

// ImportFromValid answers a check-import-from request.
type ImportFromValid struct {
	Type    string `json:"type"`
	Path    string `json:"path"`
	IsValid bool   `json:"is_valid"`
}

func (ImportFromValid) EventType() string { return TypeImportFromValid }

func NewImportFromValid(path string, isValid bool) *ImportFromValid {
	return &ImportFromValid{Type: TypeImportFromValid, Path: path, IsValid: isValid}
}

// PlayID tells the client to start playback of a track id.
type PlayID struct {
	Type string `json:"type"`
	YTID string `json:"yt_id"`
}

func (PlayID) EventType() string { return TypePlayID }

func NewPlayID(ytID string) *PlayID {
	return &PlayID{Type: TypePlayID, YTID: ytID}
}

// TrackFound answers a search-track request with the best match.
type TrackFound struct {
	Type   string       `json:"type"`
	ID     int          `json:"id"`
	Track  models.Track `json:"track"`
	Exists bool         `json:"exists"`
}

func (TrackFound) EventType() string { return TypeTrackFound }

func NewTrackFound(id int, track models.Track, exists bool) *TrackFound {
	return &TrackFound{Type: TypeTrackFound, ID: id, Track: track, Exists: exists}
}

// TrackNotFound answers a search-track request that produced no match.
type TrackNotFound struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
}

func (TrackNotFound) EventType() string { return TypeTrackNotFound }

func NewTrackNotFound(id int) *TrackNotFound {
	return &TrackNotFound{Type: TypeTrackNotFound, ID: id}
}
