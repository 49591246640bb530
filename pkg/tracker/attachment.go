package tracker

// AttachmentRef is the stored pointer at an uploaded object: its public
// URL plus the display name shown in the UI. An issue or discussion holds
// at most one.
type AttachmentRef struct {
	URL  string
	Name string
}

// IsZero reports whether the reference points at nothing.
func (r AttachmentRef) IsZero() bool {
	return r.URL == ""
}

// ReconcileAttachment decides what to do with the stored object when the
// reference on an entity changes from old to updated. The returned URL is
// the object to delete from the store, empty if nothing should be removed.
//
// The delete happens after the new reference is durably stored, never
// before: a failed upload must not leave the entity pointing at a deleted
// object.
func ReconcileAttachment(old, updated AttachmentRef) (deleteURL string) {
	if old.IsZero() || old.URL == updated.URL {
		return ""
	}
	return old.URL
}
