package flow

import "github.com/Ntrakiyski/rag-chat-api/internal/session"

// Context carries the state of one flow run across its nodes. The caller
// that starts the run builds it, every phase receives the same instance, and
// it is never persisted itself; durable state goes through the session
// store.
type Context struct {
	SessionID  string
	InputType  string
	InputValue string

	// OriginalFilename holds the uploaded name when InputValue points at a
	// scratch file on disk.
	OriginalFilename string

	ProcessedContent string
	GeneratedFaqs    []session.FAQ
	ErrorMessage     string
}

// Source is the identifier namespaces and citations are derived from: the
// name the user knows the content by, never a scratch path.
func (c *Context) Source() string {
	if c.OriginalFilename != "" {
		return c.OriginalFilename
	}
	return c.InputValue
}
