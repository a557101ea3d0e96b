package streambuffer

import "fmt"

// A ConfigError reports an invalid configuration parameter. It is returned
// at construction time and is never recovered from.
type ConfigError struct {
	Param  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("streambuffer config: %s = %v: %s",
		e.Param, e.Value, e.Reason)
}

// An InputError reports a malformed access. The access is dropped without
// modifying the table and classification continues with the next access.
type InputError struct {
	Addr   uint64
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("streambuffer input: address 0x%x: %s",
		e.Addr, e.Reason)
}
