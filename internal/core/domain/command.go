package domain

// Command describes an external tool invocation.
type Command struct {
	Name  string
	Args  []string
	Dir   string
	Stdin []byte
}
