package util

// maxUserIDLength bounds user ids so they stay usable as URL path
// segments and filenames.
const maxUserIDLength = 128

// ValidUserID reports whether id is acceptable as a graph partition
// key. User ids travel in URL paths and in download filenames, so only
// an unreserved URL charset is allowed and nothing needs escaping
// downstream.
func ValidUserID(id string) bool {
	if id == "" || len(id) > maxUserIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.':
		default:
			return false
		}
	}
	return true
}

// ExportFilename is the attachment filename for a user's graph export
// download. The id must already have passed ValidUserID.
func ExportFilename(userID string) string {
	return "graph-" + userID + ".json"
}
