package reddit

import (
	"encoding/json"
	"fmt"
	"strings"
)

type listing struct {
	Data struct {
		After    string `json:"after"`
		Before   string `json:"before"`
		Children []struct {
			Kind string     `json:"kind"`
			Data Submission `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (l listing) submissions() []Submission {
	out := make([]Submission, 0, len(l.Data.Children))
	for _, c := range l.Data.Children {
		out = append(out, c.Data)
	}
	return out
}

type meResponse struct {
	Name string `json:"name"`
}

// jsonEnvelope is the api_type=json wrapper used by the write endpoints.
type jsonEnvelope struct {
	JSON struct {
		Errors [][]any         `json:"errors"`
		Data   json.RawMessage `json:"data"`
	} `json:"json"`
}

func (e jsonEnvelope) err() error {
	if len(e.JSON.Errors) == 0 {
		return nil
	}
	parts := make([]string, 0, len(e.JSON.Errors))
	for _, item := range e.JSON.Errors {
		strs := make([]string, 0, len(item))
		for _, v := range item {
			if v == nil {
				continue
			}
			strs = append(strs, fmt.Sprint(v))
		}
		parts = append(parts, strings.Join(strs, ": "))
	}
	return &APIError{Message: strings.Join(parts, "; ")}
}

type submitData struct {
	URL  string `json:"url"`
	ID   string `json:"id"`
	Name string `json:"name"`
}
