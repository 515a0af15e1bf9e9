package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrGalleryNotFound = ErrorResponse{
		Status:  "error",
		Error:   "gallery_not_found",
		Details: "Gallery does not exist or is not published",
	}

	ErrPhotoNotFound = ErrorResponse{
		Status:  "error",
		Error:   "photo_not_found",
		Details: "Photo does not exist in this gallery",
	}

	ErrEmptySelection = ErrorResponse{
		Status:  "error",
		Error:   "empty_selection",
		Details: "Select at least one photo or choose the whole package",
	}

	ErrCheckoutFailed = ErrorResponse{
		Status:  "error",
		Error:   "checkout_failed",
		Details: "Could not reach the payment processor, your selection is preserved",
	}

	ErrAssetUnavailable = ErrorResponse{
		Status:  "error",
		Error:   "asset_unavailable",
		Details: "Signed link is invalid or expired",
	}
)
