package sessions

// Repo stores session state keyed by session ID. Get returns a snapshot that
// the caller may inspect freely; all mutation goes through Update, which must
// apply fn as an atomic read-modify-write over the whole session so that
// concurrent requests from the same browser cannot lose each other's writes.
type Repo interface {
	Get(sessionID string) (*SessionState, error)
	Update(sessionID string, fn func(*SessionState) error) error
	Delete(sessionID string) error
}
