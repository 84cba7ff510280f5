package discovery

import (
	"github.com/desertthunder/stereo/internal/models"
)

// catalogArtist is an artist credit in catalog responses.
type catalogArtist struct {
	ID   models.NumericID `json:"id"`
	Name string           `json:"name"`
}

// catalogNamed covers the label/genre/key/mood shapes, which all carry an id
// and a name.
type catalogNamed struct {
	ID   models.NumericID `json:"id"`
	Name string           `json:"name"`
}

// catalogTrack is one track in a catalog search response.
type catalogTrack struct {
	ID          models.NumericID `json:"id"`
	Name        string           `json:"name"`
	MixName     string           `json:"mix_name"`
	Artists     []catalogArtist  `json:"artists"`
	ReleaseDate string           `json:"release_date"`
	Label       *catalogNamed    `json:"label"`
	Release     *catalogNamed    `json:"release"`
	LengthMS    int              `json:"length_ms"`
	BPM         int              `json:"bpm"`
	Genre       *catalogNamed    `json:"genre"`
	Key         *catalogNamed    `json:"key"`
	Mood        *catalogNamed    `json:"mood"`
}

// toTrack converts a catalog result to the collection model. The video id is
// left empty for the caller to resolve.
func (ct catalogTrack) toTrack() *models.Track {
	track := &models.Track{
		Title: ct.Name,
	}

	if ct.ID != 0 {
		id := ct.ID
		track.BPID = &id
	}
	if ct.MixName != "" {
		mix := ct.MixName
		track.MixName = &mix
	}
	for _, a := range ct.Artists {
		track.Artists = append(track.Artists, a.Name)
	}
	if ct.ReleaseDate != "" {
		if d, err := models.ParseDate(ct.ReleaseDate); err == nil {
			track.ReleaseDate = &d
		}
	}
	if ct.Label != nil && ct.Label.Name != "" {
		label := ct.Label.Name
		track.Label = &label
	}
	if ct.Release != nil && ct.Release.Name != "" {
		album := ct.Release.Name
		track.Album = &album
	}
	if ct.LengthMS > 0 {
		length := ct.LengthMS / 1000
		track.Length = &length
	}
	if ct.BPM > 0 {
		bpm := ct.BPM
		track.BPM = &bpm
	}
	if ct.Genre != nil && ct.Genre.Name != "" {
		genre := ct.Genre.Name
		track.Genre = &genre
	}
	if ct.Key != nil && ct.Key.Name != "" {
		key := ct.Key.Name
		track.Key = &key
	}
	if ct.Mood != nil && ct.Mood.Name != "" {
		mood := ct.Mood.Name
		track.Mood = &mood
	}

	return track
}
