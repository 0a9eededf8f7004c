package hmi

import (
	"fmt"
	"os"
	"sync"

	"github.com/keybox9823/apollo/pkg/errors"
	"github.com/keybox9823/apollo/pkg/logger"
)

// flagfile tracks global flags shared with the rest of the stack. Changes are
// appended, never rewritten in place, so the last occurrence of a flag wins.
// A change is only written when the value actually moves.
type flagfile struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

func newFlagfile(path string, initial map[string]string) *flagfile {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &flagfile{path: path, values: values}
}

// set records the new flag value and appends it to the flagfile. Setting the
// current value is a no-op.
func (f *flagfile) set(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values[name] == value {
		return nil
	}
	f.values[name] = value

	if f.path == "" {
		return nil
	}
	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.New(errors.ErrCodeFlagfileWrite, "SetGlobalFlag",
			"cannot open global flagfile "+f.path, err)
	}
	defer fh.Close()
	if _, err := fmt.Fprintf(fh, "\n--%s=%s\n", name, value); err != nil {
		return errors.New(errors.ErrCodeFlagfileWrite, "SetGlobalFlag",
			"cannot append to global flagfile "+f.path, err)
	}
	logger.Log.Info("Global flag updated", "flag", name, "value", value)
	return nil
}
