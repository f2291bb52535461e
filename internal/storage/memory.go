package storage

import "errors"

// ErrClosed is returned by a Memory store after Close.
var ErrClosed = errors.New("storage closed")

// Memory is a map-backed KV. Failing can be set to make every Set fail.
type Memory struct {
	values  map[string]string
	closed  bool
	Failing error
}

var _ KV = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{values: map[string]string{}}
}

func (m *Memory) Get(key string) (string, bool, error) {
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	if m.closed {
		return ErrClosed
	}
	if m.Failing != nil {
		return m.Failing
	}
	m.values[key] = value
	return nil
}

func (m *Memory) Close() error {
	m.closed = true
	return nil
}
