package contextgather

import (
	"fmt"
)

// Kind classifies the outcome of reading one path.
type Kind int

const (
	KindOK        Kind = iota // Content holds the file text
	KindNotFound              // Missing, or not a regular file
	KindReadError             // Exists but could not be read as text
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindNotFound:
		return "not_found"
	case KindReadError:
		return "read_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name so JSON output stays readable.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ok":
		*k = KindOK
	case "not_found":
		*k = KindNotFound
	case "read_error":
		*k = KindReadError
	default:
		return fmt.Errorf("unknown entry kind %q", text)
	}
	return nil
}

// Entry is the outcome of gathering a single resolved path.
type Entry struct {
	Path    string `json:"path"`
	Kind    Kind   `json:"kind"`
	Content string `json:"content,omitempty"`
	Message string `json:"message,omitempty"` // Diagnostic when Kind != KindOK
	Err     error  `json:"-"`
}

// OK reports whether the file was read successfully.
func (e Entry) OK() bool {
	return e.Kind == KindOK
}

// Text returns the content on success and the diagnostic otherwise.
func (e Entry) Text() string {
	if e.Kind == KindOK {
		return e.Content
	}
	return e.Message
}

func notFound(path string) Entry {
	return Entry{
		Path:    path,
		Kind:    KindNotFound,
		Message: fmt.Sprintf("File not found or is a directory: %s", path),
	}
}

func readError(path string, err error) Entry {
	return Entry{
		Path:    path,
		Kind:    KindReadError,
		Message: fmt.Sprintf("Error reading file %s: %v", path, err),
		Err:     err,
	}
}

// Result maps resolved paths to their outcome.
type Result struct {
	Entries map[string]Entry
	Order   []string // Unique resolved paths in first-seen input order
}

func newResult() *Result {
	return &Result{Entries: make(map[string]Entry)}
}

func (r *Result) put(e Entry) {
	if _, seen := r.Entries[e.Path]; !seen {
		r.Order = append(r.Order, e.Path)
	}
	r.Entries[e.Path] = e
}

// Get returns the entry for a resolved path.
func (r *Result) Get(path string) (Entry, bool) {
	e, ok := r.Entries[path]
	return e, ok
}

// List returns entries in Order.
func (r *Result) List() []Entry {
	list := make([]Entry, 0, len(r.Order))
	for _, p := range r.Order {
		list = append(list, r.Entries[p])
	}
	return list
}

// Failed returns the entries that did not read successfully, in Order.
func (r *Result) Failed() []Entry {
	var failed []Entry
	for _, e := range r.List() {
		if !e.OK() {
			failed = append(failed, e)
		}
	}
	return failed
}

// Contents flattens the result to path -> content-or-diagnostic.
func (r *Result) Contents() map[string]string {
	out := make(map[string]string, len(r.Entries))
	for p, e := range r.Entries {
		out[p] = e.Text()
	}
	return out
}
