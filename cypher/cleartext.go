package cypher

// ClearText sends text as typed.
type ClearText struct{}

var _ Cypher = ClearText{}

func (ClearText) Encode(text string) string { return text }

func (ClearText) Decode(text string) (string, error) { return text, nil }

func (ClearText) String() string { return ClearTextName }
