package session

// Status tells whether a command succeeded.
type Status string

// Response statuses.
const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Entry is a key/value pair returned to the front end.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// StatsValues is the payload of a stats response.
type StatsValues struct {
	Status         Status  `json:"status"`
	DecryptionRate float64 `json:"decryption_rate"`
	Entries        int     `json:"entries"`
}

// Response is the answer to a Command. Successful responses echo the command
// kind and may carry entries or stats; failed ones carry a message, and Err
// holds the cause for callers that need to classify it.
type Response struct {
	Status  Status       `json:"response"`
	Command Kind         `json:"command,omitempty"`
	Values  []Entry      `json:"values,omitempty"`
	Stats   *StatsValues `json:"stats,omitempty"`
	Error   string       `json:"error,omitempty"`

	Err error `json:"-"`
}

// OK reports whether the response is a success.
func (r Response) OK() bool {
	return r.Status == StatusOK
}

func okResponse(kind Kind) Response {
	return Response{Status: StatusOK, Command: kind}
}

// ErrorResponse builds the response for a failure.
func ErrorResponse(err error) Response {
	return Response{Status: StatusError, Error: err.Error(), Err: err}
}
