package signaling

import (
	"encoding/json"
	"log"
)

// Event names carried in the envelope. These mirror the browser client's
// vocabulary: the "voice-" variants are a parallel set for audio-only calls.
const (
	EventJoinRoom   = "join-room"
	EventRoomJoined = "room-joined"

	EventChatMessage = "chat-message"

	EventVideoOffer      = "video-offer"
	EventVideoAnswer     = "video-answer"
	EventICECandidate    = "ice-candidate"
	EventVideoCallStart  = "video-call-start"
	EventVideoCallEnd    = "video-call-end"
	EventVideoCallJoined = "video-call-joined"
	EventVideoCallLeft   = "video-call-left"

	EventVoiceOffer        = "voice-offer"
	EventVoiceAnswer       = "voice-answer"
	EventVoiceICECandidate = "voice-ice-candidate"
	EventVoiceCallStart    = "voice-call-start"
	EventVoiceCallEnd      = "voice-call-end"
	EventVoiceCallJoined   = "voice-call-joined"
	EventVoiceCallLeft     = "voice-call-left"
)

// Envelope is the frame exchanged over the WebSocket in both directions.
// Data is kept raw: the server never interprets SDP or ICE payloads.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// relayPayloadKeys maps a negotiation event to the key its payload is
// wrapped under when relayed, e.g. video-offer data becomes
// {"offer": <payload>, "from": <sender id>}.
var relayPayloadKeys = map[string]string{
	EventVideoOffer:        "offer",
	EventVoiceOffer:        "offer",
	EventVideoAnswer:       "answer",
	EventVoiceAnswer:       "answer",
	EventICECandidate:      "candidate",
	EventVoiceICECandidate: "candidate",
}

// callTransition describes what a call-start or call-end event does to the
// presence registry and which notification the rest of the room receives.
type callTransition struct {
	kind   CallKind
	start  bool
	notify string
}

var callTransitions = map[string]callTransition{
	EventVideoCallStart: {kind: CallVideo, start: true, notify: EventVideoCallJoined},
	EventVideoCallEnd:   {kind: CallVideo, start: false, notify: EventVideoCallLeft},
	EventVoiceCallStart: {kind: CallVoice, start: true, notify: EventVoiceCallJoined},
	EventVoiceCallEnd:   {kind: CallVoice, start: false, notify: EventVoiceCallLeft},
}

// callLeftEvent returns the "…-call-left" notification for a kind, used on
// disconnect where no inbound event names it for us.
func callLeftEvent(kind CallKind) string {
	if kind == CallVoice {
		return EventVoiceCallLeft
	}
	return EventVideoCallLeft
}

// encodeFrame marshals an envelope for the wire. Marshal failures on our
// own frames indicate a programming error, so they are logged and the
// frame is dropped rather than crashing the dispatcher.
func encodeFrame(event string, data any) ([]byte, bool) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal %s payload: %v", event, err)
		return nil, false
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		log.Printf("failed to marshal %s frame: %v", event, err)
		return nil, false
	}
	return frame, true
}
