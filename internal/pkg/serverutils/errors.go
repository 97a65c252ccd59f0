package serverutils

import "errors"

var (
	ErrNotFound         = errors.New("Note non trouvée")
	ErrUnauthorized     = errors.New("you are not authorized to access this resource")
	ErrBadRequest       = errors.New("the request could not be processed due to invalid input")
	ErrStoreUnavailable = errors.New("the storage backend is currently unavailable")
	ErrInternal         = errors.New("something went wrong on our end, please try again later")
)
