package tiktok

import "fmt"

// Entity is the contract shared by every scraped value: normalized at
// construction, summarizable for logs, and serializable to a plain mapping
// in which the source handle appears only as a rendered markup snapshot.
type Entity interface {
	// Describe returns a stable human-readable summary of the entity's key
	// fields. It never touches the source handle.
	Describe() string

	// ToRecord returns a plain mapping of every field. The handle is
	// replaced by its rendered inner markup; the mapping never carries a
	// live handle. Fails with ErrStaleHandle when rendering is no longer
	// possible.
	ToRecord() (map[string]any, error)
}

var (
	_ Entity = Tag{}
	_ Entity = Author{}
	_ Entity = Caption{}
	_ Entity = Music{}
	_ Entity = Media{}
	_ Entity = Metrics{}
	_ Entity = (*Tiktok)(nil)
)

func checkHandle(h Handle) error {
	if h == nil {
		return fmt.Errorf("%w: nil source handle", ErrStaleHandle)
	}
	return nil
}
