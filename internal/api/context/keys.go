package context

type Key string

const (
	State  Key = "state"
	Params Key = "params"
)
