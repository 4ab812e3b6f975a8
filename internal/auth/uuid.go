package auth

import "fmt"

// uuidToString formats a pgtype.UUID's raw bytes as a canonical UUID
// string, the same layout the teacher's auth service used for JWT subjects.
func uuidToString(id [16]byte) string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		id[0:4], id[4:6], id[6:8], id[8:10], id[10:16])
}
