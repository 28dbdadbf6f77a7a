package handler

// ResetUploadWiring lets each test wire the upload routes on a fresh engine.
func ResetUploadWiring() {
	uploadWired.Store(false)
}
