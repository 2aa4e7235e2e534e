package model

// Package model defines the data passed between the front end, the workers and
// the download/edit services: requests, results, cookie options, progress
// events and activity log events. Values are plain structs; a request is
// validated once before dispatch and handed to the worker by value.
