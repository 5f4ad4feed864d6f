package models

// UploadCandidate carries one uploaded file through intake validation and
// staging. It exists only for the duration of a single request and is never
// persisted; once the bytes are staged, only the returned locator survives.
type UploadCandidate struct {
	Data        []byte
	ContentType string // declared by the client, e.g. "application/pdf"
	Filename    string
	Size        int64
}
