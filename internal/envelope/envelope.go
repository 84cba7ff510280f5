// Package envelope defines the tagged-union wire protocol between clients
// and the session engine, and the codec translating it to typed values.
//
// Every message is a flat JSON object with a string "type" discriminant.
// Client messages decode to [Command] values via a closed registry; server
// messages implement [Event] and are encoded in batches as a JSON array.
// Request/response correlation uses an integer id chosen by the client and
// echoed verbatim.
package envelope

// Command type tags (client → server).
const (
	TypeHeartbeat            = "heartbeat"
	TypeAddTrack             = "add-track"
	TypeAddTracks            = "add-tracks"
	TypeDeleteTracks         = "delete-tracks"
	TypeUpdateRating         = "update-rating"
	TypeIncPlayCount         = "inc-play-count"
	TypeGetTrackInfo         = "get-track-info"
	TypeGetRandomTrack       = "get-random-track"
	TypeGetRows              = "get-rows"
	TypeCollectionContainsID = "collection-contains-id"
	TypeSetCollection        = "set-collection"
	TypeCreateCollection     = "create-collection"
	TypeGetPathCompletions   = "get-path-completions"
	TypeSearch               = "search"
	TypeSearchCancelAll      = "search-cancel-all"
	TypeSearchTrack          = "search-track"
	TypeCheckImportFrom      = "check-import-from"
	TypeImportFrom           = "import-from"
)

// Event type tags (server → client).
const (
	TypeTrackUpdate            = "track-update"
	TypeReloadTracks           = "reload-tracks"
	TypeRows                   = "rows"
	TypeBackendInfo            = "backend-info"
	TypeTrackInfo              = "track-info"
	TypeCollectionInfo         = "collection-info"
	TypeDefaultCollection      = "default-collection"
	TypePathCompletions        = "path-completions"
	TypeSearchResult           = "search-result"
	TypeSearchComplete         = "search-complete"
	TypeContainsIDResponse     = "collection-contains-id-response"
	TypeNotification           = "notification"
	TypeImportFromValid        = "import-from-valid"
	TypePlayID                 = "play-id"
	TypeTrackFound             = "track-found"
	TypeTrackNotFound          = "track-not-found"
)

// Search kinds accepted by the search command.
const (
	SearchKindFuzzy    = "fuzzy"
	SearchKindByArtist = "by-artist"
	SearchKindByLabel  = "by-label"
)

// Notification severities.
const (
	SeverityInfo  = "info"
	SeverityWarn  = "warn"
	SeverityError = "error"
)

// Command is a decoded client message. CommandType returns the discriminant
// tag independent of the struct's wire Type field.
type Command interface {
	CommandType() string
}

// Event is a server message ready for encoding. Constructors set the wire
// Type field; EventType returns the same tag.
type Event interface {
	EventType() string
}
