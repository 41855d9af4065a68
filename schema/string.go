package schema

// String is a plain text schema
type String string

func (s String) String() string {
	return string(s)
}

func (s *String) Unmarshal(bs []byte) error {
	*s = String(bs)
	return nil
}

// NewString returns a pointer to a String schema
func NewString(v string) *String {
	s := String(v)
	return &s
}
