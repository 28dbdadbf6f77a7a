package domain

// Decision is the outcome chosen by a cache negotiation.
type Decision string

const (
	// DecisionCacheHit reuses a cached analysis for files the server already has.
	DecisionCacheHit Decision = "cache_hit"
	// DecisionAnalyzedByRoute triggers analysis of files the server already has.
	DecisionAnalyzedByRoute Decision = "analyzed_by_route"
	// DecisionUploaded uploads the selection; the response carried no analysis.
	DecisionUploaded Decision = "uploaded"
	// DecisionUploadedCached uploads the selection; the response carried an analysis.
	DecisionUploadedCached Decision = "uploaded_cached"
)

// HasAnalysis reports whether the decision ends with an analysis in hand.
func (d Decision) HasAnalysis() bool {
	return d != DecisionUploaded
}

// Session state keys shared by the upload and viewer pages.
const (
	SessionKeyFileData    = "fileData"
	SessionKeyFileName    = "fileName"
	SessionKeyRoute       = "route"
	SessionKeyFingerprint = "fingerprint"
	SessionKeyAnalysis    = "analysisData"
	SessionKeySavedFiles  = "savedFiles"
	SessionKeyPublicJSON  = "selectedPublicJson"
)

// AllowedContentTypes lists the MIME types accepted for selection.
var AllowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// ContentTypeByExtension maps lower-case file extensions to a MIME type.
var ContentTypeByExtension = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}
