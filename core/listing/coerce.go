package listing

import (
	"github.com/pkg/errors"

	"github.com/trezcool/preskool/core"
	"github.com/trezcool/preskool/core/entity"
)

// Coerce extracts the record list from a response payload.
// A bare array is the list; an object carries it under "data".
// An object whose "status" differs from core.StatusSuccess is an application-level failure.
// Elements that are not objects are skipped; anything else yields an empty list.
func Coerce(payload interface{}) ([]entity.RawRecord, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case []entity.RawRecord:
		return p, nil
	case []map[string]interface{}:
		recs := make([]entity.RawRecord, len(p))
		for i, m := range p {
			recs[i] = m
		}
		return recs, nil
	case []interface{}:
		return records(p), nil
	case map[string]interface{}:
		return coerceObject(p)
	case entity.RawRecord:
		return coerceObject(p)
	default:
		return nil, nil
	}
}

func coerceObject(obj map[string]interface{}) ([]entity.RawRecord, error) {
	if err := CheckStatus(obj); err != nil {
		return nil, err
	}
	if data, ok := obj["data"].([]interface{}); ok {
		return records(data), nil
	}
	return nil, nil
}

// CheckStatus returns a *core.APIError when payload is an envelope whose status sentinel is not a success.
func CheckStatus(payload interface{}) error {
	var obj map[string]interface{}
	switch p := payload.(type) {
	case map[string]interface{}:
		obj = p
	case entity.RawRecord:
		obj = p
	default:
		return nil
	}

	raw, ok := obj["status"]
	if !ok || raw == nil {
		return nil
	}
	status, isStr := raw.(string)
	if !isStr || status == core.StatusSuccess {
		return nil
	}
	msg, _ := obj["message"].(string)
	return errors.WithStack(core.NewAPIError(0, status, msg))
}

func records(items []interface{}) []entity.RawRecord {
	recs := make([]entity.RawRecord, 0, len(items))
	for _, item := range items {
		switch rec := item.(type) {
		case map[string]interface{}:
			recs = append(recs, rec)
		case entity.RawRecord:
			recs = append(recs, rec)
		}
	}
	return recs
}

// ErrorMessage extracts the human-readable message of a failed call:
// the server's message, else the transport cause, else a generic fallback.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := core.IsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	if cause := errors.Cause(err); cause != nil && cause.Error() != "" {
		return cause.Error()
	}
	return fallback
}
