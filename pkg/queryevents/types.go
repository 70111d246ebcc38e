package queryevents

import (
	"net/http"
	"time"
)

// AnsweredType is the CloudEvents type of an answered backend query.
const AnsweredType = "dev.relgraph.query.answered"

type Client struct {
	Endpoint   string
	Token      string
	Secret     string
	Source     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Answered is the payload of one answered query.
type Answered struct {
	Question  string    `json:"question"`
	Keyword   string    `json:"keyword"`
	Relations int       `json:"relations"`
	Summary   string    `json:"summary"`
	At        time.Time `json:"answeredAt"`
}
