package transports

import "time"

// Mock implements Transport for testing.
type Mock struct {
	ReadData    []byte
	ReadErr     error
	WriteData   []byte
	WriteErr    error
	OpenErr     error
	Opened      bool
	CloseCount  int
	ReadTimeout time.Duration

	// ReadFunc allows custom read behavior for complex tests.
	ReadFunc func(p []byte) (int, error)
}

func (m *Mock) Open() error {
	if m.OpenErr != nil {
		return m.OpenErr
	}
	m.Opened = true
	return nil
}

func (m *Mock) Close() error {
	m.Opened = false
	m.CloseCount++
	return nil
}

func (m *Mock) Write(p []byte) (int, error) {
	if !m.Opened {
		return 0, ErrNotOpen
	}
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	m.WriteData = append(m.WriteData, p...)
	return len(p), nil
}

func (m *Mock) Read(p []byte) (int, error) {
	if !m.Opened {
		return 0, ErrNotOpen
	}
	if m.ReadFunc != nil {
		return m.ReadFunc(p)
	}
	if m.ReadErr != nil {
		return 0, m.ReadErr
	}
	n := copy(p, m.ReadData)
	m.ReadData = m.ReadData[n:]
	return n, nil
}

func (m *Mock) SetReadTimeout(timeout time.Duration) error {
	m.ReadTimeout = timeout
	return nil
}
