package model

// NotSpecified is the fallback sentinel the model is instructed to emit for
// fields it cannot read from the image. It is passed through verbatim, never
// synthesized or normalized server-side.
const NotSpecified = "Not specified"

// Upload carries a validated prescription image through the pipeline. The
// byte content is owned by the transient store for the duration of the
// request and is never retained afterwards.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// MedicineEntry is a single medicine extracted from the prescription. Every
// field is always present; unclear fields carry the fallback sentinel.
type MedicineEntry struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions"`
}

// PrescriptionRecord is the structured result of one extraction. Medicines is
// always a non-nil slice, in source-text order. The record is returned to the
// caller and discarded; it is never persisted server-side.
type PrescriptionRecord struct {
	Medicines   []MedicineEntry `json:"medicines"`
	DoctorName  string          `json:"doctorName,omitempty"`
	PatientName string          `json:"patientName,omitempty"`
	Date        string          `json:"date,omitempty"`
}

// AllowedImageTypes is the fixed allow-list of raster media types the upload
// gate accepts.
var AllowedImageTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
}

// MaxUploadBytes is the default upload ceiling (10 MiB).
const MaxUploadBytes = 10 << 20
