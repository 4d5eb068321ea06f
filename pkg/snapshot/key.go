package snapshot

import "strings"

// Key identifies a snapshot in Redis.
type Key struct {
	// Name distinguishes independent snapshots (default "default").
	Name string
}

// String returns the key prefix.
// Format: kindle:snapshot:{name}
func (k Key) String() string {
	name := strings.TrimSpace(k.Name)
	if name == "" {
		name = "default"
	}
	return strings.Join([]string{"kindle", "snapshot", name}, ":")
}

// Items returns the list key holding one JSON record per entry.
func (k Key) Items() string {
	return k.String() + ":items"
}

// Meta returns the key holding the document metadata.
func (k Key) Meta() string {
	return k.String() + ":meta"
}

// Pending returns the staging list filled during a collection and renamed
// over Items on Flush.
func (k Key) Pending() string {
	return k.Items() + ":pending"
}
