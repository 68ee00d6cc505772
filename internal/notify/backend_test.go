package notify

// recordingBackend stores every message and returns err.
type recordingBackend struct {
	sent []Message
	err  error
}

// Send implements Backend.
func (r *recordingBackend) Send(msg Message) error {
	r.sent = append(r.sent, msg)
	return r.err
}
