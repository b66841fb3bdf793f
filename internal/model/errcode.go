// Package model holds the value types shared across the audio engine:
// songs, volume, equalizer filters, commands and the stable error taxonomy.
package model

import "fmt"

// Code is a stable, listener-facing error identifier, grouped by tens:
// terminal 1-2, song/file 30-35, driver 50, unknown 99.
type Code int

const (
	Success Code = 0

	TerminalInitialization    Code = 1
	TerminalColorsUnavailable Code = 2

	InvalidFile                 Code = 30
	FileNotSupported            Code = 31
	FileCompressionNotSupported Code = 32
	UnknownNumOfChannels        Code = 33
	InconsistentHeaderInfo      Code = 34
	CorruptedData               Code = 35

	SetupAudioParamsFailed Code = 50

	UnknownError Code = 99
)

var messages = map[Code]string{
	Success:                     "success",
	TerminalInitialization:      "could not initialize screen",
	TerminalColorsUnavailable:   "no support to change colors",
	InvalidFile:                 "invalid file",
	FileNotSupported:            "file not supported",
	FileCompressionNotSupported: "decoding compressed file is not supported",
	UnknownNumOfChannels:        "file is neither mono nor stereo",
	InconsistentHeaderInfo:      "header data is inconsistent",
	CorruptedData:               "file is corrupted",
	SetupAudioParamsFailed:      "could not set audio parameters",
	UnknownError:                "unknown error",
}

// Error wraps a Code as a Go error, optionally chaining the cause that
// produced it.
type Error struct {
	Code  Code
	Cause error
}

func NewError(code Code) *Error {
	return &Error{Code: code}
}

func WrapError(code Code, cause error) *Error {
	return &Error{Code: code, Cause: cause}
}

func (e *Error) Error() string {
	msg := messages[e.Code]
	if msg == "" {
		msg = "unmapped error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (code %d): %v", msg, e.Code, e.Cause)
	}
	return fmt.Sprintf("%s (code %d)", msg, e.Code)
}

func (e *Error) Unwrap() error { return e.Cause }

// Message returns the human-readable text for a code, for callers that
// only have the integer (e.g. a notification payload crossing a channel).
func Message(code Code) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return "unmapped error"
}
