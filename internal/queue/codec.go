package queue

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/event"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
)

// rawData extracts the data field bytes without decoding. Redis hands
// values back as strings; the producer side may also supply []byte.
func rawData(values map[string]interface{}) json.RawMessage {
	switch v := values[fieldData].(type) {
	case string:
		return json.RawMessage(v)
	case []byte:
		return json.RawMessage(v)
	}
	return nil
}

// decodeEntry parses a stream entry into the event it carries. The
// event set is closed; anything outside it is rejected here so the
// reducer only ever sees well-formed work.
func decodeEntry(values map[string]interface{}) (event.RawEvent, error) {
	data := rawData(values)
	if len(data) == 0 {
		return event.RawEvent{}, errors.New("stream entry has no data field")
	}

	var ev event.RawEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return event.RawEvent{}, fmt.Errorf("unmarshal raw event: %w", err)
	}
	if !ev.Name.Known() {
		return event.RawEvent{}, fmt.Errorf("unknown event name %q", ev.Name)
	}
	if ev.TxHash == "" {
		return event.RawEvent{}, errors.New("raw event missing transaction hash")
	}
	return ev, nil
}

// jsonPayload returns raw when it is valid JSON, otherwise wraps it in
// a JSON string so the dead_letters JSONB column accepts it.
func jsonPayload(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(raw) {
		return raw
	}
	quoted, err := json.Marshal(string(raw))
	if err != nil {
		return json.RawMessage("null")
	}
	return quoted
}

func deadLetterFromEvent(ev event.RawEvent, raw json.RawMessage, attempts int, cause error) *model.DeadLetter {
	return &model.DeadLetter{
		ChainID:   ev.ChainID,
		EventName: ev.Name.String(),
		TxHash:    ev.TxHash,
		LogIndex:  ev.LogIndex,
		Payload:   jsonPayload(raw),
		Failure:   cause.Error(),
		Attempts:  attempts,
	}
}

// deadLetterFromEntry is the fallback for entries that never decoded
// into an event. The flat metadata fields are kept when present so the
// record still points somewhere useful.
func deadLetterFromEntry(chainID model.ChainID, values map[string]interface{}, cause error) *model.DeadLetter {
	name, _ := values[fieldEvent].(string)
	return &model.DeadLetter{
		ChainID:   chainID,
		EventName: name,
		Payload:   jsonPayload(rawData(values)),
		Failure:   cause.Error(),
		Attempts:  1,
	}
}
