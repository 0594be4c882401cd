package echoapi

import (
	"github.com/trezcool/preskool/core"
)

const statusError = "ERROR"

// Response is the envelope of every answer.
type Response struct {
	Status  string            `json:"status"`
	Data    interface{}       `json:"data"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func success(data interface{}, message ...string) Response {
	resp := Response{Status: core.StatusSuccess, Data: data}
	if len(message) > 0 {
		resp.Message = message[0]
	}
	return resp
}

func failure(message string, fldErrs map[string]string) Response {
	return Response{Status: statusError, Message: message, Errors: fldErrs}
}
