package client

type writerState uint32

const (
	_ writerState = iota

	stateOpen
	stateClosed
)

func (s writerState) String() string {
	switch s {
	case stateOpen:
		return "OPEN"
	case stateClosed:
		return "CLOSED"
	case 0:
		return "UNINITIALIZED"
	default:
		return "INVALID"
	}
}
