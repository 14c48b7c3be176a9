// Package runlog persists loader lifecycle events to the database so that
// operators can audit every run without access to process logs.
package runlog

// Code identifies a loader lifecycle event. The vocabulary is closed;
// downstream monitoring filters on these exact values.
type Code string

const (
	AppStart             Code = "APP_START"
	LoadConfigSuccess    Code = "LOAD_CONFIG_SUCCESS"
	LoadConfigError      Code = "LOAD_CONFIG_ERROR"
	InitSuccess          Code = "INIT_SUCCESS"
	ExtractDataSuccess   Code = "EXTRACT_DATA_SUCCESS"
	ExtractDataError     Code = "EXTRACT_DATA_ERROR"
	TransformDataSuccess Code = "TRANSFORM_DATA_SUCCESS"
	TransformDataError   Code = "TRANSFORM_DATA_ERROR"
	ValidateDataError    Code = "VALIDATE_DATA_ERROR"
	InsertDataSuccess    Code = "INSERT_DATA_SUCCESS"
	InsertDataError      Code = "INSERT_DATA_ERROR"
	APIError             Code = "API_ERROR"
	DBError              Code = "DB_ERROR"
	UnexpectedError      Code = "UNEXPECTED_ERROR"
	AppFinished          Code = "APP_FINISHED"
)

// Status marks an event as a success or failure outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Event is one lifecycle record. LoadParamsID and DestinationTable are
// optional; they are empty for events raised before settings resolution.
type Event struct {
	Code             Code
	Status           Status
	Message          string
	LoadParamsID     string
	DestinationTable string
}
