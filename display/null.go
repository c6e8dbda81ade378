package display

// Null discards everything. Used by tests and quiet mode.
type Null struct{}

func (Null) ShowText(string, string) error { return nil }

func (Null) ShowImage(string, []byte) error { return nil }

func (Null) ReportInfo(string) {}

func (Null) ReportError(string) {}

func (Null) Close() error { return nil }

// Verify Null implements the sink interface.
var _ Sink = Null{}
