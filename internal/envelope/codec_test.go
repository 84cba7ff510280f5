package envelope

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/stereo/internal/models"
)

func TestDecodeCommand(t *testing.T) {
	t.Run("Heartbeat", func(t *testing.T) {
		cmd, err := DecodeCommand([]byte(`{"type":"heartbeat","timestamp":1712345678}`))
		if err != nil {
			t.Fatalf("failed to decode: %v", err)
		}

		hb, ok := cmd.(*Heartbeat)
		if !ok {
			t.Fatalf("expected *Heartbeat, got %T", cmd)
		}
		if hb.Timestamp != 1712345678 {
			t.Errorf("expected timestamp 1712345678, got %d", hb.Timestamp)
		}
	})

	t.Run("AddTrack", func(t *testing.T) {
		payload := `{
			"type": "add-track",
			"overwrite_existing": true,
			"track": {
				"yt_id": "dQw4w9WgXcQ",
				"bp_id": "12345678",
				"title": "Never Gonna Give You Up",
				"artists": ["Rick Astley"],
				"release_date": "1987-07-27",
				"play_count": 3
			}
		}`

		cmd, err := DecodeCommand([]byte(payload))
		if err != nil {
			t.Fatalf("failed to decode: %v", err)
		}

		add, ok := cmd.(*AddTrack)
		if !ok {
			t.Fatalf("expected *AddTrack, got %T", cmd)
		}
		if !add.OverwriteExisting {
			t.Error("expected overwrite_existing to be true")
		}
		if add.Track.YTID != "dQw4w9WgXcQ" {
			t.Errorf("expected yt_id dQw4w9WgXcQ, got %s", add.Track.YTID)
		}
		if add.Track.BPID == nil || *add.Track.BPID != 12345678 {
			t.Errorf("expected bp_id 12345678, got %v", add.Track.BPID)
		}
		if add.Track.ReleaseDate == nil || add.Track.ReleaseDate.String() != "1987-07-27" {
			t.Errorf("expected release date 1987-07-27, got %v", add.Track.ReleaseDate)
		}
		if add.Track.PlayCount != 3 {
			t.Errorf("expected play_count 3, got %d", add.Track.PlayCount)
		}
	})

	t.Run("GetRows", func(t *testing.T) {
		payload := `{
			"type": "get-rows",
			"id": 7,
			"startRow": 0,
			"endRow": 100,
			"sortModel": [{"colId": "title", "sort": "asc"}],
			"filterModel": {"genre": {"filterType": "text", "type": "equals", "filter": "Techno"}}
		}`

		cmd, err := DecodeCommand([]byte(payload))
		if err != nil {
			t.Fatalf("failed to decode: %v", err)
		}

		rows := cmd.(*GetRows)
		if rows.ID != 7 {
			t.Errorf("expected id 7, got %d", rows.ID)
		}
		if len(rows.SortModel) != 1 || rows.SortModel[0].Column != "title" {
			t.Errorf("unexpected sort model: %+v", rows.SortModel)
		}
		node, ok := rows.FilterModel["genre"]
		if !ok || node.Type != models.FilterEquals {
			t.Errorf("unexpected filter model: %+v", rows.FilterModel)
		}
	})

	t.Run("SearchDefaultsKind", func(t *testing.T) {
		cmd, err := DecodeCommand([]byte(`{"type":"search","query":"acid","query_id":3,"limit":10}`))
		if err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if kind := cmd.(*Search).Kind; kind != SearchKindFuzzy {
			t.Errorf("expected kind %q, got %q", SearchKindFuzzy, kind)
		}
	})

	t.Run("AllRegisteredTags", func(t *testing.T) {
		for tag := range commandRegistry {
			cmd, err := DecodeCommand([]byte(`{"type":"` + tag + `"}`))
			if tag == TypeAddTrack || tag == TypeUpdateRating || tag == TypeIncPlayCount ||
				tag == TypeSetCollection || tag == TypeCreateCollection || tag == TypeImportFrom {
				// these require payload fields and fail validation when bare
				if err == nil {
					t.Errorf("%s: expected validation error for empty payload", tag)
				}
				continue
			}
			if err != nil {
				t.Errorf("%s: unexpected decode error: %v", tag, err)
				continue
			}
			if cmd.CommandType() != tag {
				t.Errorf("%s: CommandType returned %s", tag, cmd.CommandType())
			}
		}
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		_, err := DecodeCommand([]byte(`{"type": "heartbeat"`))
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("expected ErrMalformed, got %v", err)
		}
	})

	t.Run("MissingType", func(t *testing.T) {
		_, err := DecodeCommand([]byte(`{"id": 1}`))
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("expected ErrMalformed, got %v", err)
		}
	})

	t.Run("UnknownType", func(t *testing.T) {
		_, err := DecodeCommand([]byte(`{"type":"self-destruct"}`))
		if !errors.Is(err, ErrUnknownType) {
			t.Errorf("expected ErrUnknownType, got %v", err)
		}

		var derr *DecodeError
		if !errors.As(err, &derr) || derr.Tag != "self-destruct" {
			t.Errorf("expected DecodeError with tag, got %v", err)
		}
	})

	t.Run("InvalidPayload", func(t *testing.T) {
		_, err := DecodeCommand([]byte(`{"type":"get-rows","startRow":50,"endRow":10}`))
		if !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("expected ErrInvalidPayload, got %v", err)
		}
	})

	t.Run("WrongFieldType", func(t *testing.T) {
		_, err := DecodeCommand([]byte(`{"type":"delete-tracks","ids":"not-a-list"}`))
		if !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("expected ErrInvalidPayload, got %v", err)
		}
	})
}

func TestEncodeEvents(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		data, err := EncodeEvents(nil)
		if err != nil {
			t.Fatalf("failed to encode: %v", err)
		}
		if string(data) != "[]" {
			t.Errorf("expected [], got %s", data)
		}
	})

	t.Run("Batch", func(t *testing.T) {
		track := models.Track{YTID: "abc123", Title: "Test", Artists: []string{"A"}}
		events := []Event{
			NewBackendInfo("0.3.0"),
			NewTrackUpdate(track),
			NewSearchComplete(9),
		}

		data, err := EncodeEvents(events)
		if err != nil {
			t.Fatalf("failed to encode: %v", err)
		}

		var decoded []map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("output is not a JSON array: %v", err)
		}
		if len(decoded) != 3 {
			t.Fatalf("expected 3 events, got %d", len(decoded))
		}
		if decoded[0]["type"] != TypeBackendInfo {
			t.Errorf("expected first event type %s, got %v", TypeBackendInfo, decoded[0]["type"])
		}
		if decoded[2]["query_id"] != float64(9) {
			t.Errorf("expected query_id 9, got %v", decoded[2]["query_id"])
		}
	})

	t.Run("NumericIDAsString", func(t *testing.T) {
		id := models.NumericID(987654321012)
		track := models.Track{YTID: "x", Title: "T", Artists: []string{"A"}, BPID: &id}

		data, err := EncodeEvents([]Event{NewTrackUpdate(track)})
		if err != nil {
			t.Fatalf("failed to encode: %v", err)
		}
		if !strings.Contains(string(data), `"bp_id":"987654321012"`) {
			t.Errorf("expected quoted bp_id, got %s", data)
		}
	})
}

func TestHeartbeatRoundTrip(t *testing.T) {
	data, err := EncodeEvents([]Event{NewHeartbeat(42)})
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}

	var batch []json.RawMessage
	if err := json.Unmarshal(data, &batch); err != nil {
		t.Fatalf("failed to split batch: %v", err)
	}

	cmd, err := DecodeCommand(batch[0])
	if err != nil {
		t.Fatalf("echoed heartbeat failed to decode: %v", err)
	}
	if cmd.(*Heartbeat).Timestamp != 42 {
		t.Errorf("expected timestamp 42, got %d", cmd.(*Heartbeat).Timestamp)
	}
}
