package model

import "github.com/m-mizutani/goerr/v2"

// Error tags shared by every service
var (
	ErrTagValidation  = goerr.NewTag("validation")
	ErrTagExtraction  = goerr.NewTag("extraction")
	ErrTagSecondaryID = goerr.NewTag("secondary_id")
	ErrTagFilesystem  = goerr.NewTag("filesystem")
	ErrTagTranscode   = goerr.NewTag("transcode")
	ErrTagNetwork     = goerr.NewTag("network")
)
