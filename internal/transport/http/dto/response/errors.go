package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status: "error",
		Error:  "authentication_failed",
	}

	ErrUserAlreadyExists = ErrorResponse{
		Status:  "error",
		Error:   "user_already_exists",
		Details: "User with this email already exists",
	}

	ErrAlbumNotFound = ErrorResponse{
		Status:  "error",
		Error:   "album_not_found",
		Details: "Album not found",
	}

	ErrMediaNotFound = ErrorResponse{
		Status:  "error",
		Error:   "media_not_found",
		Details: "Media not found",
	}

	ErrAlbumExpired = ErrorResponse{
		Status:  "error",
		Error:   "album_expired",
		Details: "This gallery has expired",
	}

	ErrPinRequired = ErrorResponse{
		Status:  "error",
		Error:   "pin_required",
		Details: "This gallery is PIN protected",
	}

	ErrInvalidPin = ErrorResponse{
		Status:  "error",
		Error:   "invalid_pin",
		Details: "Wrong PIN",
	}

	ErrDownloadsDisabled = ErrorResponse{
		Status:  "error",
		Error:   "downloads_disabled",
		Details: "Downloads are disabled for this gallery",
	}

	ErrInternal = ErrorResponse{
		Status:  "error",
		Error:   "internal_error",
		Details: "Internal server error",
	}
)
