package prescription

// analysisPrompt is the fixed instruction template sent with every image. It
// is immutable after process start and shared by all requests; the model is
// told the exact output shape and the fallback sentinel for unclear fields.
const analysisPrompt = `Analyze this prescription image and extract the following information in JSON format:

{
  "medicines": [
    {
      "name": "Medicine name",
      "dosage": "Dosage amount (e.g., 500mg, 10ml)",
      "frequency": "How often to take (e.g., Twice daily, Every 8 hours)",
      "duration": "How long to take (e.g., 7 days, 2 weeks)",
      "instructions": "Special instructions (e.g., Take after meals, Take on empty stomach)"
    }
  ],
  "doctorName": "Doctor's name if visible",
  "patientName": "Patient's name if visible",
  "date": "Prescription date if visible (YYYY-MM-DD format)"
}

Instructions:
- Extract all medicines mentioned in the prescription
- If any field is not clearly visible or mentioned, use "Not specified" as the value
- Ensure the JSON is valid and properly formatted
- Focus on accuracy - only extract information that is clearly visible
- For dosage, include both strength and form (e.g., "500mg tablet", "10ml syrup")
- For frequency, be specific (e.g., "Once daily", "Twice daily", "Every 6 hours")
- For duration, extract the exact period mentioned (e.g., "7 days", "2 weeks", "1 month")
- Output only the JSON object, without surrounding prose or markdown fences`

// AnalysisPrompt exposes the template for diagnostics.
func AnalysisPrompt() string {
	return analysisPrompt
}
