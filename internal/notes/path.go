package notes

import "fmt"

// AttachmentPath builds the object key for an uploaded blob, namespaced
// by owner and note with a millisecond timestamp prefix keeping repeated
// uploads of the same filename distinct.
func AttachmentPath(owner UserID, noteID, name string, unixMillis int64) string {
	return fmt.Sprintf("%s/%s/%d_%s", owner.String(), noteID, unixMillis, name)
}
