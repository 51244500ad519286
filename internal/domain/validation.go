package domain

import "time"

// Verdict is the outcome class of a single validation attempt.
type Verdict string

const (
	// VerdictValid means the video is playable and embeddable.
	VerdictValid Verdict = "valid"
	// VerdictInvalid means the platform confirmed the video is unusable.
	VerdictInvalid Verdict = "invalid"
	// VerdictInconclusive means no decision could be reached (timeout, transport
	// error, missing credential). Inconclusive outcomes are never cached.
	VerdictInconclusive Verdict = "inconclusive"
)

// ValidationMethod names the check that produced a verdict.
type ValidationMethod string

const (
	MethodMetadataAPI    ValidationMethod = "metadata_api"
	MethodEmbedInfo      ValidationMethod = "embed_info"
	MethodExistenceProbe ValidationMethod = "existence_probe"
	MethodNegativeCache  ValidationMethod = "negative_cache"
	MethodSeed           ValidationMethod = "seed"
	MethodStaticFallback ValidationMethod = "static_fallback"
)

// ReasonCode explains why a video was rejected.
type ReasonCode string

const (
	ReasonCachedFailure    ReasonCode = "cached_failure"
	ReasonNotEmbeddable    ReasonCode = "not_embeddable"
	ReasonPrivate          ReasonCode = "private"
	ReasonRejected         ReasonCode = "rejected"
	ReasonNotFound         ReasonCode = "not_found"
	ReasonEmbedForbidden   ReasonCode = "embed_forbidden"
	ReasonProbeFailed      ReasonCode = "probe_failed"
	ReasonAllMethodsFailed ReasonCode = "all_methods_failed"
	ReasonValidationError  ReasonCode = "validation_error"
)

// WarningEmbeddabilityUnconfirmed flags a video accepted only by the existence probe.
const WarningEmbeddabilityUnconfirmed = "embeddability_unconfirmed"

// VideoMetadata is display metadata returned by a successful check.
type VideoMetadata struct {
	Title         string `json:"title,omitempty"`
	Author        string `json:"author,omitempty"`
	ChannelID     string `json:"channel_id,omitempty"`
	Embeddable    bool   `json:"embeddable"`
	PrivacyStatus string `json:"privacy_status,omitempty"`
	UploadStatus  string `json:"upload_status,omitempty"`
}

// ValidationResult is the tagged outcome of validating one video.
// Exactly one of the verdict-specific fields is meaningful:
// Method/Metadata/Warning for VerdictValid, Reason for VerdictInvalid,
// Detail for VerdictInconclusive.
type ValidationResult struct {
	VideoID   VideoID          `json:"video_id"`
	Verdict   Verdict          `json:"verdict"`
	Method    ValidationMethod `json:"method,omitempty"`
	Reason    ReasonCode       `json:"reason,omitempty"`
	Warning   string           `json:"warning,omitempty"`
	Detail    string           `json:"detail,omitempty"`
	Metadata  *VideoMetadata   `json:"metadata,omitempty"`
	CheckedAt time.Time        `json:"checked_at"`
}

// Valid builds a successful result.
func Valid(id VideoID, method ValidationMethod, md *VideoMetadata) ValidationResult {
	return ValidationResult{VideoID: id, Verdict: VerdictValid, Method: method, Metadata: md, CheckedAt: time.Now()}
}

// Invalid builds a confirmed-failure result.
func Invalid(id VideoID, method ValidationMethod, reason ReasonCode) ValidationResult {
	return ValidationResult{VideoID: id, Verdict: VerdictInvalid, Method: method, Reason: reason, CheckedAt: time.Now()}
}

// Inconclusive builds a no-decision result.
func Inconclusive(id VideoID, method ValidationMethod, detail string) ValidationResult {
	return ValidationResult{VideoID: id, Verdict: VerdictInconclusive, Method: method, Detail: detail, CheckedAt: time.Now()}
}

// IsValid reports whether the verdict is VerdictValid.
func (r ValidationResult) IsValid() bool {
	return r.Verdict == VerdictValid
}

// IsDecisive reports whether the result ends the validation chain.
func (r ValidationResult) IsDecisive() bool {
	return r.Verdict == VerdictValid || r.Verdict == VerdictInvalid
}

// Status maps the verdict onto a stored validation status.
// Inconclusive results have no stored equivalent and return false.
func (r ValidationResult) Status() (ValidationStatus, bool) {
	switch r.Verdict {
	case VerdictValid:
		return ValidationValid, true
	case VerdictInvalid:
		return ValidationInvalid, true
	}
	return "", false
}

// ValidationDetails is what VideoStore.MarkValidation records alongside a status.
type ValidationDetails struct {
	Method  ValidationMethod
	Reason  ReasonCode
	Warning string
	At      time.Time
}

// Details extracts the store-facing details of a result.
func (r ValidationResult) Details() ValidationDetails {
	return ValidationDetails{
		Method:  r.Method,
		Reason:  r.Reason,
		Warning: r.Warning,
		At:      r.CheckedAt,
	}
}

// String renders the details as the single text column kept by stores.
func (d ValidationDetails) String() string {
	switch {
	case d.Reason != "" && d.Warning != "":
		return string(d.Reason) + "; " + d.Warning
	case d.Reason != "":
		return string(d.Reason)
	default:
		return d.Warning
	}
}
