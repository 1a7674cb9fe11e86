package search

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

const (
	MsgInvalidUsername = "Username must be a string."
	MsgEmptyUsername   = "Username must not be empty."
	MsgInvalidPattern  = "Pattern must be a valid regular expression."
	MsgUnexpected      = "Unexpected error."
)

// Result is the body of every search response, successful or not.
type Result struct {
	Status   string   `json:"status"`
	Username string   `json:"username"`
	Pattern  string   `json:"pattern"`
	Matches  []string `json:"matches"`
	Message  string   `json:"message"`
}

type successBody struct {
	Status   string   `json:"status"`
	Username string   `json:"username"`
	Pattern  string   `json:"pattern"`
	Matches  []string `json:"matches"`
}

type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// MarshalJSON writes only the fields belonging to the result status.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Status != StatusSuccess {
		return json.Marshal(errorBody{Status: StatusError, Message: r.Message})
	}

	matches := r.Matches
	if matches == nil {
		matches = []string{}
	}
	return json.Marshal(successBody{
		Status:   r.Status,
		Username: r.Username,
		Pattern:  r.Pattern,
		Matches:  matches,
	})
}

func Success(username, pattern string, matches []string) Result {
	if matches == nil {
		matches = []string{}
	}
	return Result{
		Status:   StatusSuccess,
		Username: username,
		Pattern:  pattern,
		Matches:  matches,
	}
}

func Failure(message string) Result {
	return Result{Status: StatusError, Message: message}
}

// Classify maps an error to the error result shown to clients.
func Classify(err error) Result {
	var notFound *NotFoundError
	var upstream *UpstreamError

	switch {
	case errors.Is(err, ErrInvalidUsername):
		return Failure(MsgInvalidUsername)
	case errors.Is(err, ErrEmptyUsername):
		return Failure(MsgEmptyUsername)
	case errors.Is(err, ErrInvalidPattern):
		return Failure(MsgInvalidPattern)
	case errors.As(err, &notFound) && notFound.Message != "":
		return Failure(notFound.Message)
	case errors.As(err, &upstream) && upstream.Message != "":
		return Failure(upstream.Message)
	}

	log.Debug().Err(err).Msg("Unclassified search error")
	return Failure(MsgUnexpected)
}
