package models

import "errors"

var (
	ErrForbidden            = errors.New("requester does not own or author the target record")
	ErrInvalidParty         = errors.New("referenced customer or contractor does not exist")
	ErrNoProject            = errors.New("requested project does not exist")
	ErrNoApplication        = errors.New("requested site visit application does not exist")
	ErrNoBid                = errors.New("requested bid does not exist")
	ErrInvalidState         = errors.New("operation is not allowed in the project's current status")
	ErrDuplicateApplication = errors.New("an active site visit application already exists for this contractor and project")
	ErrDuplicateBid         = errors.New("a live bid already exists for this contractor and project")
	ErrNotEligible          = errors.New("contractor has no qualifying site visit application for this project")
	ErrAlreadySelected      = errors.New("a winning bid has already been selected for this project")
	ErrInvalidPrice         = errors.New("bid price must be positive")
)
