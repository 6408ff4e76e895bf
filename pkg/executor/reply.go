package executor

import "github.com/suqilabs/suqi/pkg/registry"

// ReplyType tags the shape of the user-facing payload.
type ReplyType string

const (
	ReplyTable  ReplyType = "table"
	ReplyMap    ReplyType = "map"
	ReplyReport ReplyType = "report"
	ReplyStatus ReplyType = "status"
	ReplyAnswer ReplyType = "answer"
	ReplyError  ReplyType = "error"
)

// replyTypes maps each tool to the reply shape its output produces.
var replyTypes = map[registry.Code]ReplyType{
	registry.SemanticQuery: ReplyTable,
	registry.GeoExport:     ReplyMap,
	registry.ParityCheck:   ReplyReport,
	registry.AutoSyncFlat:  ReplyStatus,
	registry.CatalogQA:     ReplyAnswer,
}

// Reply is the shaped payload returned to the end user.
type Reply struct {
	Type     ReplyType `json:"type"`
	Payload  any       `json:"payload,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`
	Errors   []string  `json:"errors,omitempty"`
}

// synthesizeReply builds the final reply from the last successful
// artifact, which is not necessarily the last attempted step. With no
// successful artifacts, the reply enumerates every step error.
func synthesizeReply(artifacts []Artifact) *Reply {
	for i := len(artifacts) - 1; i >= 0; i-- {
		a := artifacts[i]
		if !a.Success {
			continue
		}
		reply := &Reply{
			Type:    replyTypes[a.Step.Tool],
			Payload: a.Output,
		}
		if a.Verification != nil {
			reply.Warnings = a.Verification.Warnings
		}
		return reply
	}

	var errs []string
	for _, a := range artifacts {
		if a.Error != "" {
			errs = append(errs, string(a.Step.Tool)+": "+a.Error)
		}
	}
	if len(errs) == 0 {
		errs = append(errs, "plan produced no artifacts")
	}
	return &Reply{Type: ReplyError, Errors: errs}
}
