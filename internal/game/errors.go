package game

import (
	"fmt"
	"net/http"
	"strconv"
)

// Code is a machine-readable reason an action was rejected
type Code string

const (
	CodeRoomFull         Code = "room_full"
	CodeAlreadyJoined    Code = "already_joined"
	CodeNotInGame        Code = "not_in_game"
	CodeWrongPhase       Code = "wrong_phase"
	CodeGameEnded        Code = "game_ended"
	CodePlayerDead       Code = "player_dead"
	CodeWrongRole        Code = "wrong_role"
	CodeOnCooldown       Code = "on_cooldown"
	CodeUnknownRoom      Code = "unknown_room"
	CodeNotConnected     Code = "not_connected"
	CodeDoorsLocked      Code = "doors_locked"
	CodeNoCharges        Code = "no_charges"
	CodeInVent           Code = "in_vent"
	CodeNotInVent        Code = "not_in_vent"
	CodeInvalidTask      Code = "invalid_task"
	CodeWrongRoom        Code = "wrong_room"
	CodeNoBody           Code = "no_body"
	CodeReportGrace      Code = "report_grace"
	CodeReportCooldown   Code = "report_cooldown"
	CodeMeetingCooldown  Code = "meeting_cooldown"
	CodeNoMeetingsLeft   Code = "no_meetings_left"
	CodeSabotageActive   Code = "sabotage_active"
	CodeNoSabotage       Code = "no_sabotage"
	CodeSabotageMismatch Code = "sabotage_mismatch"
	CodeInvalidStep      Code = "invalid_step"
	CodeFixExpired       Code = "fix_expired"
	CodeInvalidTarget    Code = "invalid_target"
	CodeOutOfRange       Code = "out_of_range"
	CodeAlreadyShielded  Code = "already_shielded"
	CodeInvalidSettings  Code = "invalid_settings"
	CodeSessionExists    Code = "session_exists"
	CodeSessionNotFound  Code = "session_not_found"
)

// HTTPStatus maps a rejection code to the status the HTTP surface answers with
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotInGame, CodeSessionNotFound:
		return http.StatusNotFound
	case CodeUnknownRoom, CodeInvalidTask, CodeInvalidTarget, CodeInvalidStep, CodeInvalidSettings:
		return http.StatusBadRequest
	case CodeWrongRole:
		return http.StatusForbidden
	case CodeOnCooldown, CodeReportCooldown, CodeMeetingCooldown, CodeReportGrace:
		return http.StatusTooManyRequests
	default:
		return http.StatusConflict
	}
}

// Rejection is an expected refusal of an action. The game state is left
// unchanged whenever one is returned.
type Rejection struct {
	Code     Code
	Message  string
	Metadata map[string]string
}

// Error implements the error interface
func (r *Rejection) Error() string {
	return r.Message
}

// Is reports whether target matches this rejection by code
func (r *Rejection) Is(target error) bool {
	if t, ok := target.(*Rejection); ok {
		return r.Code == t.Code
	}
	return false
}

// Reject creates a rejection with a formatted message
func Reject(code Code, format string, args ...any) *Rejection {
	return &Rejection{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithMetadata attaches a key/value pair and returns the rejection
func (r *Rejection) WithMetadata(key, value string) *Rejection {
	if r.Metadata == nil {
		r.Metadata = make(map[string]string)
	}
	r.Metadata[key] = value
	return r
}

// ErrRoomFull matches, through errors.Is, the rejection for joining a lobby
// that has no free seat. It is only compared against; RoomFull builds the
// value that is returned.
var ErrRoomFull = &Rejection{Code: CodeRoomFull, Message: "room full"}

// RoomFull returns a fresh room-full rejection the caller may annotate
func RoomFull(max int) *Rejection {
	return Reject(CodeRoomFull, "room full").WithMetadata("max_players", strconv.Itoa(max))
}
