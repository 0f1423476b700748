package value

import "fmt"

// MutableString is a mutable, byte-indexed string (string-set! mutates a
// single byte in place, matching R5RS's byte-indexed, not rune-indexed,
// string model).
type MutableString struct {
	B []byte
}

func NewString(s string) *MutableString { return &MutableString{B: []byte(s)} }

func (s *MutableString) Type() string { return "string" }
func (s *MutableString) String() string {
	return fmt.Sprintf("%q", string(s.B))
}

// Go returns the Go string view of the current contents.
func (s *MutableString) Go() string { return string(s.B) }

func (s *MutableString) Len() int { return len(s.B) }

func (s *MutableString) Ref(i int) (Char, error) {
	if i < 0 || i >= len(s.B) {
		return 0, fmt.Errorf("string-ref: index %d out of range", i)
	}
	return Char(s.B[i]), nil
}

func (s *MutableString) Set(i int, c Char) error {
	if i < 0 || i >= len(s.B) {
		return fmt.Errorf("string-set!: index %d out of range", i)
	}
	s.B[i] = byte(c)
	return nil
}
