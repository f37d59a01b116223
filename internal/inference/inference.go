package inference

import "context"

// ImagePayload is the shape the inference service accepts: base64-encoded
// image data paired with its declared media type.
type ImagePayload struct {
	Data      string
	MediaType string
}

// Invoker is the external vision-inference capability. Given an instruction
// prompt and an encoded image it returns the model's free-form text answer.
// Implementations classify remote failures; they never retry.
type Invoker interface {
	// Configured reports whether a credential is present. Callers check
	// this before staging anything.
	Configured() bool

	// Invoke performs a single inference call. Blocking; latency is
	// bounded only by the transport and any deadline on ctx.
	Invoke(ctx context.Context, prompt string, image ImagePayload) (string, error)

	// Ping performs a minimal text-only generation to verify the
	// credential works end to end.
	Ping(ctx context.Context) error

	// Model returns the configured model name, for logs and audit.
	Model() string
}
