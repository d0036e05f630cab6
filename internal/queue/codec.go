package queue

import (
	"encoding/json"
	"log"

	"backend-taqvo/internal/community"
)

// envelope tags each serialized write with its kind so decode can pick the
// right variant. Unknown kinds are dropped, not fatal, so a downgrade never
// wedges the whole queue.
type envelope struct {
	Kind    community.WriteKind `json:"kind"`
	Payload json.RawMessage     `json:"payload"`
}

func encode(writes []community.Write) ([]byte, error) {
	envelopes := make([]envelope, 0, len(writes))
	for _, w := range writes {
		payload, err := json.Marshal(w)
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, envelope{Kind: w.Kind(), Payload: payload})
	}
	return json.Marshal(envelopes)
}

func decode(data []byte) ([]community.Write, error) {
	var envelopes []envelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return nil, err
	}

	var writes []community.Write
	for _, env := range envelopes {
		w, ok := decodeOne(env)
		if !ok {
			log.Printf("dropping queued write of unknown kind %q", env.Kind)
			continue
		}
		writes = append(writes, w)
	}
	return writes, nil
}

func decodeOne(env envelope) (community.Write, bool) {
	switch env.Kind {
	case community.WriteJoin:
		var w community.JoinWrite
		if json.Unmarshal(env.Payload, &w) != nil {
			return nil, false
		}
		return w, true
	case community.WriteClubJoin:
		var w community.ClubJoinWrite
		if json.Unmarshal(env.Payload, &w) != nil {
			return nil, false
		}
		return w, true
	case community.WriteContributions:
		var w community.ContributionsWrite
		if json.Unmarshal(env.Payload, &w) != nil {
			return nil, false
		}
		return w, true
	case community.WriteInvite:
		var w community.InviteWrite
		if json.Unmarshal(env.Payload, &w) != nil {
			return nil, false
		}
		return w, true
	}
	return nil, false
}
