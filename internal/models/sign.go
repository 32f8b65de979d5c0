package models

// Sign is the direction of an operation.
type Sign string

const (
	SignPositive Sign = "+"
	SignNegative Sign = "-"
)

func (s Sign) String() string {
	return string(s)
}
