package socketiobackend

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/robogrid/internal/value"
)

type actionResult struct {
	result value.Value
	err    error
}

func eventError(args []any) error {
	if len(args) > 0 {
		if err, ok := args[0].(error); ok {
			return err
		}
		return fmt.Errorf("%v", args[0])
	}
	return errors.New("connect_error without details")
}

func firstObject(data []any) (map[string]any, error) {
	if len(data) == 0 {
		return nil, errors.New("event carries no payload")
	}
	obj, ok := data[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("payload is %T, not an object", data[0])
	}
	return obj, nil
}

// decodeSensors decodes a sensors event payload.
func decodeSensors(data []any) (value.Record, error) {
	obj, err := firstObject(data)
	if err != nil {
		return nil, err
	}
	v, err := value.FromAny(obj)
	if err != nil {
		return nil, err
	}
	return v.AsRecord(), nil
}

// decodeResult decodes an action_result payload of the form
// {"id": ..., "ok": bool, "result": any, "error": string}.
func decodeResult(data []any) (string, actionResult, error) {
	obj, err := firstObject(data)
	if err != nil {
		return "", actionResult{}, err
	}
	id, _ := obj["id"].(string)
	if id == "" {
		return "", actionResult{}, errors.New("action result has no id")
	}
	if msg, _ := obj["error"].(string); msg != "" {
		return id, actionResult{err: errors.New(msg)}, nil
	}
	if ok, present := obj["ok"].(bool); present && !ok {
		return id, actionResult{err: errors.New("action failed")}, nil
	}
	result, err := value.FromAny(obj["result"])
	if err != nil {
		return id, actionResult{}, fmt.Errorf("action result '%s': %w", id, err)
	}
	if result.IsNull() {
		result = value.Bool(true)
	}
	return id, actionResult{result: result}, nil
}
