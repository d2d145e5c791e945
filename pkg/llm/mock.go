package llm

import "context"

// MockFormatter is a configurable mock for tests. Set FormatFunc to control
// behavior; the zero value echoes the SQL or the first passage.
type MockFormatter struct {
	FormatFunc  func(ctx context.Context, fc FormatContext) (string, error)
	FormatCalls int
}

// Format implements Formatter.
func (m *MockFormatter) Format(ctx context.Context, fc FormatContext) (string, error) {
	m.FormatCalls++
	if m.FormatFunc != nil {
		return m.FormatFunc(ctx, fc)
	}
	if fc.SQL != "" {
		return fc.SQL, nil
	}
	if len(fc.Passages) > 0 {
		return fc.Passages[0], nil
	}
	return "", nil
}
