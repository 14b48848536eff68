package api

// Error is a normalized remote API failure. Message is what the user sees;
// Snippet keeps up to 200 bytes of a non-JSON body for logs.
type Error struct {
	Status  int
	Message string
	Snippet string
}

func (e *Error) Error() string {
	return e.Message
}
