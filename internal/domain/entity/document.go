package entity

// DocumentStatus is the provider-side processing state of an uploaded
// document.
type DocumentStatus string

const (
	DocumentStatusUnprocessed      DocumentStatus = "unprocessed"
	DocumentStatusUploaded         DocumentStatus = "uploaded"
	DocumentStatusMetadataReady    DocumentStatus = "metadata_ready"
	DocumentStatusPendingSignature DocumentStatus = "pending_signature"
	DocumentStatusCertificated     DocumentStatus = "certificated"
	DocumentStatusUnknown          DocumentStatus = "unknown"
)

// ParseDocumentStatus maps a raw provider status string to a DocumentStatus.
// Unrecognized values come back as DocumentStatusUnknown so callers never
// branch on raw strings.
func ParseDocumentStatus(raw string) DocumentStatus {
	switch DocumentStatus(raw) {
	case DocumentStatusUnprocessed,
		DocumentStatusUploaded,
		DocumentStatusMetadataReady,
		DocumentStatusPendingSignature,
		DocumentStatusCertificated:
		return DocumentStatus(raw)
	}
	return DocumentStatusUnknown
}

// ReadyForAssignment reports whether the provider will accept a signature
// assignment for a document in this state. "uploaded" counts as ready even
// before metadata extraction finishes; the provider accepts assignments at
// that point.
func (s DocumentStatus) ReadyForAssignment() bool {
	switch s {
	case DocumentStatusUploaded, DocumentStatusMetadataReady, DocumentStatusPendingSignature:
		return true
	}
	return false
}
